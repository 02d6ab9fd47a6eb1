package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"thesis_backend/internals/configs"
	"thesis_backend/internals/features/thesis/reports/dto"
	"thesis_backend/internals/features/thesis/reports/model"
	"thesis_backend/internals/features/thesis/reports/service"
	topicController "thesis_backend/internals/features/thesis/topics/controller"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
	"thesis_backend/internals/helpers/oss"
)

type ReportController struct {
	Svc      *service.Service
	MaxBytes int64
}

func NewReportController(svc *service.Service) *ReportController {
	return &ReportController{
		Svc:      svc,
		MaxBytes: int64(configs.GetEnvInt("REPORT_MAX_UPLOAD_MB", 5)) << 20,
	}
}

// readFile: required=false mengembalikan nil bila field file kosong.
func (rc *ReportController) readFile(c *fiber.Ctx, required bool) (*oss.StoreInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if !required {
			return nil, nil
		}
		return nil, apperr.ValidationFields("file is required", map[string][]string{"file": {"required"}})
	}
	in, err := oss.ReadUpload(fh, service.Folder, rc.MaxBytes)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// POST /api/reports (multipart)
func (rc *ReportController) Submit(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid form data"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	file, err := rc.readFile(c, true)
	if err != nil {
		return helper.FromError(c, err)
	}
	r, err := rc.Svc.Submit(c.UserContext(), actor, dto.SubmitReportInput{
		TopicID: uuid.MustParse(req.TopicID),
		Content: req.Content,
		Period:  req.Period,
		File:    *file,
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "report submitted", dto.ToReportResponse(*r))
}

// PUT /api/reports/:id (multipart, file opsional)
func (rc *ReportController) Edit(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.EditReportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid form data"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	file, err := rc.readFile(c, false)
	if err != nil {
		return helper.FromError(c, err)
	}
	r, err := rc.Svc.Edit(c.UserContext(), actor, id, dto.EditReportInput{Content: req.Content, File: file})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "report updated", dto.ToReportResponse(*r))
}

type reportFn func(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID) (*model.ReportModel, error)

func (rc *ReportController) simple(fn reportFn, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helpersAuth.IdentityFromCtx(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		id, err := topicController.ParseID(c, "id")
		if err != nil {
			return helper.FromError(c, err)
		}
		r, err := fn(c.UserContext(), actor, id)
		if err != nil {
			return helper.FromError(c, err)
		}
		return helper.JsonOK(c, msg, dto.ToReportResponse(*r))
	}
}

// DELETE /api/reports/:id
func (rc *ReportController) Delete(c *fiber.Ctx) error {
	return rc.simple(rc.Svc.SoftDelete, "report deleted")(c)
}

// POST /api/reports/:id/restore
func (rc *ReportController) Restore(c *fiber.Ctx) error {
	return rc.simple(rc.Svc.Restore, "report restored")(c)
}

// GET /api/reports/:id
func (rc *ReportController) Get(c *fiber.Ctx) error {
	return rc.simple(rc.Svc.Get, "ok")(c)
}

// POST /api/reports/:id/review {action}
func (rc *ReportController) Review(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	r, err := rc.Svc.Review(c.UserContext(), actor, id, req.Approve())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "report "+string(r.ReportStatus), dto.ToReportResponse(*r))
}

// POST /api/reports/topics/:topicId/submit-to-admin
func (rc *ReportController) SubmitToAdmin(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	topicID, err := topicController.ParseID(c, "topicId")
	if err != nil {
		return helper.FromError(c, err)
	}
	n, err := rc.Svc.SubmitToAdmin(c.UserContext(), actor, topicID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "reports submitted to admin", dto.SubmitToAdminResponse{TopicID: topicID, Submitted: n})
}

type listFn func(ctx context.Context, actor helpersAuth.Identity, offset, limit int) ([]model.ReportModel, int64, error)

func (rc *ReportController) list(fn listFn) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helpersAuth.IdentityFromCtx(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		p := helper.ResolvePaging(c, 20, 100)
		rows, total, err := fn(c.UserContext(), actor, p.Offset, p.Limit)
		if err != nil {
			return helper.FromError(c, err)
		}
		pg := helper.BuildPagination(total, p, len(rows))
		return helper.JsonList(c, "ok", dto.ToReportResponseList(rows), &pg, nil)
	}
}

// GET /api/reports
func (rc *ReportController) List(c *fiber.Ctx) error {
	return rc.list(rc.Svc.List)(c)
}

// GET /api/reports/deleted
func (rc *ReportController) ListDeleted(c *fiber.Ctx) error {
	return rc.list(rc.Svc.ListDeleted)(c)
}

// GET /api/reports/:id/download
func (rc *ReportController) Download(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	url, err := rc.Svc.DownloadURL(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return c.Redirect(url, fiber.StatusFound)
}
