// Package ledger はスプレッドシート台帳のアカウントストアを呼び出すクライアントを提供する。
//
// ゲートウェイはトークンを発行せず、毎回の呼び出しで資格情報をストアに
// 判定させる。ジョブ投入時はログイン（残高確認）と控除の2回呼び出される。
package ledger
