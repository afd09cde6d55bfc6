// Package httpclient は上流サービスへのHTTP通信を行うクライアントを提供する。
//
// 計算プロバイダへのジョブ投入・ファイルアップロードと、
// アカウントストアへの認証・控除の呼び出しで共通して使用する。
// クライアントはプロセス起動時に1つ生成され、終了時にClose()で解放される。
package httpclient
