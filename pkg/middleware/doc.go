// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// CORS設定、リクエストID付与、アクセスログ、パニックリカバリなど、
// ゲートウェイの全エンドポイントで共通して使用するミドルウェアを含む。
package middleware
