package gateway

import "encoding/json"

// Preset は名前で引くワークフロー定義。
// 生のワークフロー・ノード識別子をクライアントから隠すための対応表。
type Preset struct {
	// WorkflowID はプロバイダ上のワークフロー識別子。
	WorkflowID string `json:"workflow_id"`
	// PromptNodeID はプロンプト文を設定するノードの識別子。
	PromptNodeID string `json:"prompt_node_id"`
	// ImageNodeID は入力画像を設定するノードの識別子。
	ImageNodeID string `json:"image_node_id"`
	// StrengthNodeID は強度を設定するノードの識別子。省略可。
	StrengthNodeID string `json:"strength_node_id"`
	// StrengthAdjustable はクライアントによる強度指定を許可するかどうか。
	StrengthAdjustable bool `json:"strength_adjustable"`
}

// defaultPresets はビルド時に組み込むプリセット表を返す。
// 運用でワークフローIDを差し替える場合はPRESETS_JSONで上書きする。
func defaultPresets() map[string]Preset {
	return map[string]Preset{
		"txt2img": {
			WorkflowID:   "1898190626961874946",
			PromptNodeID: "6",
		},
		"img2img": {
			WorkflowID:         "1898191296061714433",
			PromptNodeID:       "6",
			ImageNodeID:        "10",
			StrengthNodeID:     "3",
			StrengthAdjustable: true,
		},
		"upscale": {
			WorkflowID:  "1901123764172261378",
			ImageNodeID: "2",
		},
	}
}

// parsePresets はJSON文字列からプリセット表を構築する。
func parsePresets(raw string) (map[string]Preset, error) {
	var presets map[string]Preset
	if err := json.Unmarshal([]byte(raw), &presets); err != nil {
		return nil, err
	}
	return presets, nil
}
