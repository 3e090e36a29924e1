package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/entities"
)

type WorkspaceController struct {
	provisioner WorkspaceProvisioner
}

func NewWorkspaceController(provisioner WorkspaceProvisioner) *WorkspaceController {
	return &WorkspaceController{provisioner: provisioner}
}

type provisionRequest struct {
	Email       string                `json:"email"`
	MasterWords []entities.MasterWord `json:"masterWords"`
}

// Provision creates missing tables and seeds the catalog. Safe to repeat.
// POST /api/workspace
func (wc *WorkspaceController) Provision(c *gin.Context) {
	var req provisionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := wc.provisioner.EnsureWorkspace(c.Request.Context(), req.Email, req.MasterWords)
	if err != nil {
		respondServiceError(c, err, "provision workspace")
		return
	}
	respondOK(c, "workspace ready", result)
}
