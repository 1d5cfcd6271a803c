package app

import (
	"context"
	"encoding/base64"

	"wikitrans/internal/usecase/editor"
	"wikitrans/internal/usecase/importer"
)

type ImportAPI struct {
	svc *importer.Service
	vm  *editor.ViewModel
}

func NewImportAPI(svc *importer.Service, vm *editor.ViewModel) *ImportAPI {
	return &ImportAPI{svc: svc, vm: vm}
}

type ImportRequest struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	// Content is base64-encoded text bytes
	ContentB64 string `json:"content_b64"`
}

// ImportBase64 applies an edits file to the open project. The edits stay
// uncommitted until the next Commit.
func (a *ImportAPI) ImportBase64(req ImportRequest) (importer.ImportResult, error) {
	ctx := context.Background()
	b, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		return importer.ImportResult{}, err
	}
	res, err := a.svc.Import(ctx, a.vm.Buffer(), importer.ImportArgs{Filename: req.Filename, Format: req.Format, Content: b})
	if res.Applied > 0 {
		a.vm.Refresh()
	}
	return res, err
}
