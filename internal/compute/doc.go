// Package compute はGPUワークフロー実行基盤（計算プロバイダ）を呼び出すクライアントを提供する。
//
// ジョブ投入・ファイルアップロード・タスク状態と生成物の取得を担当する。
// プロバイダのAPIキーとワークフロー識別子をクライアントから隠すのが
// ゲートウェイの目的であり、キーの付与はすべてこのパッケージで行う。
package compute
