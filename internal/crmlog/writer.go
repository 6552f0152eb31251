// Package crmlog persists call logs to the CRM through the toolkit API.
package crmlog

import (
	"github.com/pdxmph/softphone-sync/internal/crm"
	"github.com/pdxmph/softphone-sync/internal/logging"
)

// Writer saves records and refreshes the CRM view once a save lands
type Writer struct {
	api crm.API
	log *logging.Logger
}

// NewWriter creates a Writer over api
func NewWriter(api crm.API, log *logging.Logger) *Writer {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Writer{api: api, log: log.WithComponent("crm-log")}
}

// Write saves record. On success the CRM view is refreshed; on failure the
// error is logged and nothing else happens.
func (w *Writer) Write(record crm.Record) *crm.Call {
	return w.api.SaveLog(record).Then(func(r crm.Result) {
		if !r.Success {
			w.log.Error("updating record failed", "record_id", record.ID, "errors", r.Errors)
			return
		}
		w.log.Info("updated record", "record_id", r.ReturnValue)
		if err := w.api.RefreshView(); err != nil {
			w.log.Error("refreshing CRM view failed", "error", err)
		}
	})
}
