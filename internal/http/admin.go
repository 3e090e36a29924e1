package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/database/intents"
	"github.com/mrlokans/mazo/internal/entities"
)

// ReconcileEnqueuer hands a full reconciliation scan to the task queue.
type ReconcileEnqueuer interface {
	EnqueueReconcileAll(ctx context.Context, minAge time.Duration) (string, error)
}

type AdminController struct {
	intents    IntentLister
	reconciler IntentReconciler
	queue      ReconcileEnqueuer
}

func NewAdminController(lister IntentLister, reconciler IntentReconciler, queue ReconcileEnqueuer) *AdminController {
	return &AdminController{intents: lister, reconciler: reconciler, queue: queue}
}

// ListIntents pages through the write-intent log.
// GET /api/admin/intents?status=&limit=&offset=
func (ac *AdminController) ListIntents(c *gin.Context) {
	status := entities.IntentStatus(c.Query("status"))
	switch status {
	case "", entities.IntentStatusPending, entities.IntentStatusCompleted, entities.IntentStatusFailed,
		entities.IntentStatusReconciled, entities.IntentStatusAbandoned:
	default:
		respondBadRequest(c, "status", "is not a known intent status")
		return
	}

	limit, offset := parsePagination(c, 50, 200)
	items, total, err := ac.intents.List(status, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list intents")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(items)) < total,
	})
}

// GetIntent returns one intent.
// GET /api/admin/intents/:id
func (ac *AdminController) GetIntent(c *gin.Context) {
	intent, err := ac.intents.Get(c.Param("id"))
	if err != nil {
		ac.respondIntentError(c, err, "get intent")
		return
	}
	respondOK(c, "", intent)
}

// AdminScanMinAge skips intents whose request may still be running when an
// admin triggers a full scan.
const AdminScanMinAge = 30 * time.Second

// Reconcile repairs one intent synchronously when id is given, otherwise
// queues a scan of every pending intent older than AdminScanMinAge. Without a
// queue the scan runs inline.
// POST /api/admin/reconcile?id=
func (ac *AdminController) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()

	if id := c.Query("id"); id != "" {
		outcome, err := ac.reconciler.ReconcileIntent(ctx, id)
		if err != nil {
			ac.respondIntentError(c, err, "reconcile intent")
			return
		}
		respondOK(c, "intent "+string(outcome.Status), outcome)
		return
	}

	if ac.queue != nil {
		taskID, err := ac.queue.EnqueueReconcileAll(ctx, AdminScanMinAge)
		if err != nil {
			respondInternalError(c, err, "enqueue reconcile")
			return
		}
		respondAccepted(c, "reconciliation queued", gin.H{"taskId": taskID})
		return
	}

	summary, err := ac.reconciler.Scan(ctx, AdminScanMinAge)
	if err != nil {
		respondInternalError(c, err, "reconcile")
		return
	}
	respondOK(c, "reconciliation finished", summary)
}

func (ac *AdminController) respondIntentError(c *gin.Context, err error, context string) {
	if errors.Is(err, intents.ErrIntentNotFound) {
		respondError(c, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
		return
	}
	respondInternalError(c, err, context)
}
