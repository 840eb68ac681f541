package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yumyai/snpview/internal/util"
	"github.com/yumyai/snpview/logger"
	"github.com/yumyai/snpview/pkg/handler/request"
	"github.com/yumyai/snpview/pkg/model"
	"go.uber.org/zap"
)

// The upload collaborator notifies the core after it stored a file.
// The core re-validates opportunistically but never auto-renders.
func (appctx *AppContext) FileNoticeHandler(w http.ResponseWriter, r *http.Request) {

	s, ok := appctx.sessionFromPath(w, r)
	if !ok {
		return
	}

	var notice request.FileNotice
	if err := json.NewDecoder(r.Body).Decode(&notice); err != nil {
		logger.Error(err.Error())
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role := model.ParseFileRole(notice.Role)
	if role == model.RoleUnknown {
		http.Error(w, "Unknown file role", http.StatusBadRequest)
		return
	}

	if notice.Path == "" {
		http.Error(w, "Missing file path", http.StatusBadRequest)
		return
	}

	// The collaborator may store files on a volume this process cannot
	// see, so a missing path is a warning, not a rejection.
	if !util.FileExists(notice.Path) {
		logger.Warn("Registered file not visible on disk",
			zap.String("session", s.ID),
			zap.String("path", notice.Path),
		)
	}

	logger.Info("File registered",
		zap.String("session", s.ID),
		zap.String("role", role.String()),
		zap.String("path", notice.Path),
		zap.Bool("parsed", notice.Parsed),
	)

	res, err := s.RegisterFile(model.UploadedFile{
		Role:   role,
		Path:   notice.Path,
		Format: notice.Format,
		Parsed: notice.Parsed,
		Chrom:  notice.Chrom,
		Start:  notice.Start,
		End:    notice.End,
	})
	appctx.writeTriggerResult(w, s.ID, res, err)
}
