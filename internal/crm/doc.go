// Package crm models the CRM telephony toolkit embedded around the agent
// desktop: detecting whether the desktop runs inside the CRM, loading the
// toolkit API on demand, and the asynchronous calls the toolkit exposes.
package crm
