package compute

import "encoding/json"

// NodeInfo はワークフロー内の1ノードへのフィールド設定指示を表す。
type NodeInfo struct {
	// NodeID は対象ノードの識別子。
	NodeID string `json:"nodeId"`
	// FieldName は設定するフィールド名（"text"・"image"・"guidance"）。
	FieldName string `json:"fieldName"`
	// FieldValue は設定する値。
	FieldValue any `json:"fieldValue"`
}

// envelope は計算プロバイダの共通レスポンス形式。
// codeが0以外の場合はプロバイダ側のドメインエラーを表す。
type envelope struct {
	// Code は処理結果コード。0が成功。
	Code int `json:"code"`
	// Msg はプロバイダからのメッセージ。
	Msg string `json:"msg"`
	// Data は操作ごとのペイロード。
	Data json.RawMessage `json:"data"`
}

// createTaskData はジョブ作成成功時のペイロード。
type createTaskData struct {
	// TaskID はプロバイダが採番したタスク識別子。
	TaskID string `json:"taskId"`
}
