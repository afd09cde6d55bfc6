// Package gateway は秘匿ゲートウェイサービスの内部実装を提供する。
//
// 計算プロバイダのAPIキーとワークフロー識別子をクライアントから隠し、
// 課金を伴うジョブ投入の前にアカウントストアでクレジット残高を確認する。
// ゲートウェイ自身は状態を持たず、全エンドポイントが単一ホップの中継である。
package gateway
