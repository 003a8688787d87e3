package api

import (
	"context"
	"encoding/json"
	"net/http"

	"s3-resources/internal/pipeline"
	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/response"
	"s3-resources/pkg/utils"
)

type hookRequest struct {
	OperationID string `json:"operation_id"`
	ResourceID  string `json:"resource_id"`
	PackageID   string `json:"package_id"`
}

type hookResult struct {
	OperationID     string `json:"operation_id"`
	Uploaded        bool   `json:"uploaded"`
	PackageArchived bool   `json:"package_archived"`
	URL             string `json:"url,omitempty"`
}

// HandleHook 宿主生命周期事件
// POST /api/hooks/{event}
func (h *ServerHandler) HandleHook(w http.ResponseWriter, r *http.Request) {
	ev := pipeline.Event(r.PathValue("event"))

	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, e.New(code.ParamError, "invalid hook payload", err))
		return
	}
	if req.ResourceID == "" && req.PackageID == "" {
		response.Error(w, e.New(code.ParamError, "resource_id or package_id is required", nil))
		return
	}

	// 调用方断开也要把本次流水线跑完
	ctx := context.WithoutCancel(r.Context())

	// 1. 同一宿主操作内的多个钩子共用 Operation
	op, ok := h.ops.get(req.OperationID)
	if !ok {
		op = h.mirror.NewOperation()
		req.OperationID = h.ops.put(op)
	}

	// 2. 每次都从宿主读取最新的资源
	if req.ResourceID != "" {
		res, err := h.cat.ShowResource(ctx, req.ResourceID)
		if err != nil {
			response.Error(w, err)
			return
		}
		op.Resource = res
	}
	if req.PackageID != "" {
		op.PackageID = req.PackageID
	}

	// 3. 分发
	h.log.Debug("Hook received", "event", ev, "operation", req.OperationID, "remote", utils.ClientIP(r))
	if err := h.hooks.Dispatch(ctx, ev, op); err != nil {
		h.log.Error("Hook failed", "event", ev, "operation", req.OperationID, "error", err)
		h.ops.drop(req.OperationID)
		response.Error(w, err)
		return
	}
	if ev == pipeline.EventPackageAfterUpdate {
		h.ops.drop(req.OperationID)
	}

	result := hookResult{
		OperationID:     req.OperationID,
		Uploaded:        op.Uploaded,
		PackageArchived: op.PackageArchived,
	}
	if op.Resource != nil {
		result.URL = op.Resource.URL
	}
	response.Success(w, result)
}

// ListHooks 已注册的事件
// GET /api/hooks
func (h *ServerHandler) ListHooks(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.hooks.Events())
}
