package api

import (
	"net/http"
	"os"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/filter"
	"s3-resources/pkg/naming"
	"s3-resources/pkg/protocol"
	"s3-resources/pkg/response"
)

// PackageDownload 跳转到数据集 zip
// GET /dataset/{id}/download
func (h *ServerHandler) PackageDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.cat.CheckAccess(r.Context(), r.Header.Get(UserHeader), id); err != nil {
		response.Error(w, err)
		return
	}
	pkg, err := h.cat.ShowPackage(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	http.Redirect(w, r, h.urlPrefix+naming.PackageZipKey(pkg.Name), http.StatusFound)
}

// ResourceDownload 本地上传的直接返回文件，已镜像的跳转到资源 zip，外部链接跳转到原地址
// GET /dataset/{id}/resource/{resource_id}/download
func (h *ServerHandler) ResourceDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.cat.ShowResource(ctx, r.PathValue("resource_id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.cat.CheckAccess(ctx, r.Header.Get(UserHeader), res.PackageID); err != nil {
		response.Error(w, err)
		return
	}

	switch {
	case res.IsLocal():
		p, ok := h.resolver.PathFor(res.ID)
		if !ok {
			response.Error(w, e.New(code.NotFound, "Resource data not found", nil))
			return
		}
		f, err := os.Open(p)
		if err != nil {
			response.Error(w, e.New(code.NotFound, "Resource data not found", err))
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			response.Error(w, e.New(code.NotFound, "Resource data not found", err))
			return
		}
		w.Header().Set("Content-Type", filter.ContentType(res))
		http.ServeContent(w, r, naming.MemberName(res), info.ModTime(), f)

	case res.URL == "":
		response.Error(w, e.New(code.NotFound, "No download is available", nil))

	case res.URLType == protocol.LocationRemote:
		pkg, err := h.cat.ShowPackage(ctx, res.PackageID)
		if err != nil {
			response.Error(w, err)
			return
		}
		http.Redirect(w, r, h.urlPrefix+naming.ResourceZipKey(pkg.Name, res), http.StatusFound)

	default:
		http.Redirect(w, r, res.URL, http.StatusFound)
	}
}
