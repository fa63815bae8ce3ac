package logging

import "log/slog"

// Common structured log field keys.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldComponent  = "component"
	FieldBoxer      = "boxer"
	FieldBoxerID    = "boxer_id"
	FieldWinner     = "winner"
	FieldLoser      = "loser"
	FieldSkill      = "skill"
	FieldProb       = "win_probability"
	FieldDraw       = "draw"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldDurationMS = "duration_ms"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}

// Component tags every record from logger with the owning component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return OrDiscard(logger).With(slog.String(FieldComponent, name))
}
