// Package domain defines the persistence models shared by the access log
// assembler, its sinks and the repository layer. These types are mapped with
// GORM and serialized as JSON by the governance endpoints.
package domain

import "time"

// AccessLog is a structured summary of one served request, successful or not.
//
// Fields:
//   - ID: UUID primary key assigned when the record is assembled.
//   - AccessTime: wall-clock time the record was assembled (UTC).
//   - StartTime / EndTime: request start marker and completion time.
//   - TimeCost: EndTime - StartTime in milliseconds.
//   - ClientHost: client address, proxy headers honored.
//   - UserID: authenticated user, empty for anonymous requests.
//   - Params: JSON object of the request parameters (query and form).
//   - Path / Method: raw request path and HTTP method.
//   - APIVersion / Platform: client-declared values read from request
//     parameters, 0 when absent or non-numeric. Not validated.
//   - ServerID: identity of the serving instance, empty when unknown.
//   - Status: transport status written to the client.
//   - ErrorCode / ErrorMsg: classified error, zero values on success.
//   - RequestID / TraceID / Locale: correlation and client context.
type AccessLog struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	AccessTime time.Time `json:"access_time" gorm:"not null;index:idx_access_time"`
	StartTime  time.Time `json:"start_time"  gorm:"not null"`
	EndTime    time.Time `json:"end_time"    gorm:"not null"`
	TimeCost   int64     `json:"time_cost"   gorm:"not null"`
	ClientHost string    `json:"client_host" gorm:"type:varchar(64)"`
	UserID     string    `json:"user_id,omitempty" gorm:"type:varchar(64);index:idx_access_user"`
	Params     string    `json:"params"      gorm:"type:text"`
	Path       string    `json:"path"        gorm:"type:varchar(512);not null;index:idx_access_path"`
	Method     string    `json:"method"      gorm:"type:varchar(16)"`
	APIVersion int       `json:"api_version"`
	Platform   int       `json:"platform"`
	ServerID   string    `json:"server_id"   gorm:"type:varchar(128)"`
	Status     int       `json:"status"`
	ErrorCode  int       `json:"error_code,omitempty" gorm:"index:idx_access_error"`
	ErrorMsg   string    `json:"error_msg,omitempty"  gorm:"type:text"`
	RequestID  string    `json:"request_id,omitempty" gorm:"type:varchar(64)"`
	TraceID    string    `json:"trace_id,omitempty"   gorm:"type:varchar(32)"`
	Locale     string    `json:"locale,omitempty"     gorm:"type:varchar(35)"`
}

// TableName returns the database table name for AccessLog.
func (AccessLog) TableName() string { return "access_logs" }

// Failed reports whether the record carries a classified error.
func (a AccessLog) Failed() bool { return a.ErrorCode != 0 || a.ErrorMsg != "" }
