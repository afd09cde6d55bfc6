package gateway

// loginRequest はログインエンドポイントのリクエストボディ。
type loginRequest struct {
	// Username はアカウントストア上のユーザー名。
	Username string `json:"username" binding:"required"`
	// Password はパスワード。ゲートウェイは保存せず、ストアに判定を委ねる。
	Password string `json:"password" binding:"required"`
}

// createWorkflowRequest はジョブ投入エンドポイントのリクエストボディ。
// プリセット名か、生のワークフロー・ノード識別子のどちらかを指定する。
type createWorkflowRequest struct {
	// Username はアカウントストア上のユーザー名。
	Username string `json:"username" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
	// PresetName はサーバー側プリセット表の名前。
	PresetName string `json:"preset_name"`
	// WorkflowID はクライアント指定の生ワークフロー識別子。
	WorkflowID string `json:"workflow_id"`
	// PromptNodeID はプロンプトノードの識別子。
	PromptNodeID string `json:"prompt_id"`
	// ImageNodeID は画像ノードの識別子。
	ImageNodeID string `json:"image_id"`
	// StrengthNodeID は強度ノードの識別子。
	StrengthNodeID string `json:"strength_id"`
	// GPUMode はGPUティア指定。"plus"で上位インスタンスを要求する。
	GPUMode string `json:"gpu_mode" binding:"omitempty,gpumode"`
	// PromptText はプロンプト文。空の場合はノード設定ごと省略される。
	PromptText string `json:"prompt_text"`
	// ImgPath は事前アップロードで得たプロバイダ側ファイル記述子。
	ImgPath string `json:"img_path"`
	// Strength は強度。未指定の場合はノード設定ごと省略される。
	Strength *float64 `json:"strength"`
}

// createWorkflowResponse はジョブ投入成功時のレスポンスボディ。
type createWorkflowResponse struct {
	// TaskID はプロバイダが採番したタスク識別子。
	TaskID string `json:"task_id"`
}
