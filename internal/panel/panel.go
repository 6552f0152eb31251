// Package panel adjusts the agent desktop layout: the softphone panel width
// owned by the CRM toolkit and the secondary panel owned by the host UI.
package panel

import (
	"github.com/pdxmph/softphone-sync/internal/crm"
	"github.com/pdxmph/softphone-sync/internal/host"
	"github.com/pdxmph/softphone-sync/internal/logging"
)

// WidthController resizes the softphone panel
type WidthController struct {
	api crm.API
	log *logging.Logger
}

// NewWidthController creates a WidthController over api
func NewWidthController(api crm.API, log *logging.Logger) *WidthController {
	if log == nil {
		log = logging.NopLogger()
	}
	return &WidthController{api: api, log: log.WithComponent("panel-width")}
}

// SetWidth requests a new panel width. The outcome is logged when the
// toolkit answers; callers may wait on the returned call or drop it.
func (c *WidthController) SetWidth(widthPX int) *crm.Call {
	return c.api.SetSoftphonePanelWidth(widthPX).Then(func(r crm.Result) {
		if r.Success {
			c.log.Info("softphone panel width set", "width_px", widthPX)
			return
		}
		c.log.Error("setting softphone panel width failed", "width_px", widthPX, "errors", r.Errors)
	})
}

// ConfigUpdater merges partial UI configuration
type ConfigUpdater interface {
	UpdateConfig(patch host.ConfigPatch) error
}

// LayoutController toggles the agent desktop's secondary panel
type LayoutController struct {
	ui ConfigUpdater
}

// NewLayoutController creates a LayoutController over ui
func NewLayoutController(ui ConfigUpdater) *LayoutController {
	return &LayoutController{ui: ui}
}

// SetSecondaryPanelVisible shows or hides the secondary panel
func (c *LayoutController) SetSecondaryPanelVisible(visible bool) error {
	return c.ui.UpdateConfig(SecondaryPanelPatch(visible))
}

// SecondaryPanelPatch builds the configuration patch for the secondary panel
func SecondaryPanelPatch(visible bool) host.ConfigPatch {
	return host.ConfigPatch{
		"componentProps": host.ConfigPatch{
			"AgentDesktopView": host.ConfigPatch{
				"showPanel2": visible,
			},
		},
	}
}
