package gateway

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/aigateway/internal/compute"
	"github.com/nao1215/aigateway/internal/ledger"
	"github.com/nao1215/aigateway/pkg/middleware"
)

// handleLogin は認証とクレジット残高確認を行うハンドラを返す。
// 成功時はアカウントストアのレコード（残高を含む）をそのまま返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストパラメータが不正です"})
			return
		}

		record, err := s.ledger.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			s.writeLedgerError(c, err)
			return
		}

		c.Data(http.StatusOK, "application/json", record)
	}
}

// workflowTarget は解決済みのワークフロー・ノード識別子の組。
type workflowTarget struct {
	workflowID         string
	promptNodeID       string
	imageNodeID        string
	strengthNodeID     string
	strengthAdjustable bool
}

// handleCreateWorkflow はジョブ投入ハンドラを返す。
// ログイン（残高確認）→ 識別子の解決 → プロバイダ投入 → 控除の記録、の順で処理する。
func (s *Server) handleCreateWorkflow() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createWorkflowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストパラメータが不正です"})
			return
		}

		// 課金を伴う計算の前に必ず残高を確認する。
		if _, err := s.ledger.Login(c.Request.Context(), req.Username, req.Password); err != nil {
			s.writeLedgerError(c, err)
			return
		}

		if s.cfg.ProviderAPIKey == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "サーバーにAPIキーが設定されていません"})
			return
		}

		target, err := s.resolveWorkflow(&req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		nodes := buildNodeInfoList(target, &req)
		taskID, err := s.compute.CreateTask(c.Request.Context(), target.workflowID, nodes, req.GPUMode == "plus")
		if err != nil {
			s.writeComputeError(c, err)
			return
		}

		// プロバイダがジョブを受理した後にのみ控除を記録する。
		// ここで失敗してもジョブは既に作成済みのため取り消せない。
		// 台帳との不一致として記録し、手動での突き合わせに委ねる。
		if err := s.ledger.Deduct(c.Request.Context(), req.Username, req.Password, taskID); err != nil {
			s.logger.Error("控除の記録に失敗（ジョブは作成済み）",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("username", req.Username),
				zap.String("task_id", taskID),
				zap.Error(err),
			)
		} else {
			s.logger.Info("利用実績を記録",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("username", req.Username),
				zap.String("task_id", taskID),
			)
		}

		c.JSON(http.StatusOK, createWorkflowResponse{TaskID: taskID})
	}
}

// resolveWorkflow はプリセット名または生識別子からワークフロー・ノード識別子を解決する。
func (s *Server) resolveWorkflow(req *createWorkflowRequest) (workflowTarget, error) {
	if req.PresetName != "" {
		preset, ok := s.cfg.Presets[req.PresetName]
		if !ok {
			return workflowTarget{}, errors.New("不明なプリセット名です: " + req.PresetName)
		}
		return workflowTarget{
			workflowID:         preset.WorkflowID,
			promptNodeID:       preset.PromptNodeID,
			imageNodeID:        preset.ImageNodeID,
			strengthNodeID:     preset.StrengthNodeID,
			strengthAdjustable: preset.StrengthAdjustable,
		}, nil
	}

	if req.WorkflowID == "" {
		return workflowTarget{}, errors.New("preset_name か workflow_id のいずれかを指定してください")
	}

	// 生の識別子の受け入れは識別子をクライアントから隠すという本来の目的に
	// 反するが、既存クライアントとの互換のため維持している。
	s.logger.Warn("クライアントが生のワークフロー識別子を指定",
		zap.String("workflow_id", req.WorkflowID),
	)
	return workflowTarget{
		workflowID:         req.WorkflowID,
		promptNodeID:       req.PromptNodeID,
		imageNodeID:        req.ImageNodeID,
		strengthNodeID:     req.StrengthNodeID,
		strengthAdjustable: true,
	}, nil
}

// buildNodeInfoList はリクエストからノード設定の一覧を組み立てる。
// 各スロットは値とノード識別子の両方が揃っている場合にのみ含まれる。
// どちらかが欠けているスロットはエラーにせず黙って省略する。
func buildNodeInfoList(target workflowTarget, req *createWorkflowRequest) []compute.NodeInfo {
	nodes := []compute.NodeInfo{}
	if req.PromptText != "" && target.promptNodeID != "" {
		nodes = append(nodes, compute.NodeInfo{
			NodeID:     target.promptNodeID,
			FieldName:  "text",
			FieldValue: req.PromptText,
		})
	}
	if req.Strength != nil && target.strengthNodeID != "" && target.strengthAdjustable {
		nodes = append(nodes, compute.NodeInfo{
			NodeID:     target.strengthNodeID,
			FieldName:  "guidance",
			FieldValue: *req.Strength,
		})
	}
	if req.ImgPath != "" && target.imageNodeID != "" {
		nodes = append(nodes, compute.NodeInfo{
			NodeID:     target.imageNodeID,
			FieldName:  "image",
			FieldValue: req.ImgPath,
		})
	}
	return nodes
}

// handleUpload はファイルをプロバイダへ中継するハンドラを返す。
func (s *Server) handleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.ProviderAPIKey == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "サーバーにAPIキーが設定されていません"})
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fileフィールドが必要です"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ファイルの読み取りに失敗しました"})
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/png"
		}

		descriptor, err := s.compute.Upload(c.Request.Context(), data, header.Filename, contentType)
		if err != nil {
			s.writeComputeError(c, err)
			return
		}

		c.Data(http.StatusOK, "application/json", descriptor)
	}
}

// handleTaskStatus はタスク状態の素通し転送を行うハンドラを返す。
// プロバイダのレスポンスはエラーコードを含めて書き換えずに返す。
func (s *Server) handleTaskStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.proxyProvider(c, func() ([]byte, error) {
			return s.compute.TaskStatus(c.Request.Context(), c.Param("task_id"))
		})
	}
}

// handleTaskOutputs はタスク生成物の素通し転送を行うハンドラを返す。
func (s *Server) handleTaskOutputs() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.proxyProvider(c, func() ([]byte, error) {
			return s.compute.TaskOutputs(c.Request.Context(), c.Param("task_id"))
		})
	}
}

// handleAccountStatus はプロバイダ側アカウント状態の素通し転送を行うハンドラを返す。
func (s *Server) handleAccountStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.proxyProvider(c, func() ([]byte, error) {
			return s.compute.AccountStatus(c.Request.Context())
		})
	}
}

// proxyProvider は素通し系エンドポイントの共通処理。
// 通信自体の失敗以外はプロバイダのボディをそのまま返す。
func (s *Server) proxyProvider(c *gin.Context, call func() ([]byte, error)) {
	if s.cfg.ProviderAPIKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "サーバーにAPIキーが設定されていません"})
		return
	}

	body, err := call()
	if err != nil {
		s.logger.Error("プロバイダへの転送に失敗",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "プロバイダに接続できません: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// writeLedgerError はアカウントストア呼び出しの失敗をHTTPレスポンスに変換する。
func (s *Server) writeLedgerError(c *gin.Context, err error) {
	var authErr *ledger.AuthError
	switch {
	case errors.As(err, &authErr):
		// ストアのメッセージをそのまま透過する。
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
	case errors.Is(err, ledger.ErrInsufficientCredit):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "クレジット残高が不足しています"})
	case errors.Is(err, ledger.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "アカウントストアが設定されていません"})
	default:
		s.logger.Error("アカウントストアの呼び出しに失敗",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "アカウントストアに接続できません: " + err.Error()})
	}
}

// writeComputeError は計算プロバイダ呼び出しの失敗をHTTPレスポンスに変換する。
func (s *Server) writeComputeError(c *gin.Context, err error) {
	var apiErr *compute.APIError
	if errors.As(err, &apiErr) {
		// プロバイダのメッセージをそのまま透過する。リトライは行わない。
		c.JSON(http.StatusBadRequest, gin.H{"error": "プロバイダエラー: " + apiErr.Msg})
		return
	}

	s.logger.Error("プロバイダの呼び出しに失敗",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "プロバイダに接続できません: " + err.Error()})
}
