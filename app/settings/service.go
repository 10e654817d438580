package settings

import (
	"context"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/km-arc/simple-lms/framework/config"
	"github.com/km-arc/simple-lms/framework/http/validation"
)

// Settings are the typed admin settings.
type Settings struct {
	AnalyticsEnabled    bool   `mapstructure:"analytics_enabled" json:"analytics_enabled"`
	RetentionDays       int    `mapstructure:"retention_days" json:"retention_days"`
	AccessDeniedMessage string `mapstructure:"access_denied_message" json:"access_denied_message"`
}

// Rules validate the admin settings form. Fields left out of a submission
// keep their stored value.
var Rules = validation.Rules{
	"analytics_enabled":     "sometimes|required|boolean",
	"retention_days":        "sometimes|required|integer|between:1,3650",
	"access_denied_message": "sometimes|nullable|string|max:255",
}

// Service loads and saves Settings.
type Service struct {
	repo     *Repository
	defaults Settings
}

// NewService returns a Service whose defaults come from the analytics config.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo: repo,
		defaults: Settings{
			AnalyticsEnabled:    cfg.Analytics.Enabled,
			RetentionDays:       cfg.Analytics.RetentionDays,
			AccessDeniedMessage: "This action is unauthorized.",
		},
	}
}

// Defaults returns the settings used for keys that were never saved.
func (s *Service) Defaults() Settings { return s.defaults }

// Load returns the defaults overlaid with every stored option.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	values, err := s.repo.All(ctx)
	if err != nil {
		return Settings{}, err
	}

	out := s.defaults
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return Settings{}, errors.WithStack(err)
	}
	if err := decoder.Decode(values); err != nil {
		return Settings{}, errors.Wrapf(err, "failed to decode settings")
	}
	return out, nil
}

// Save validates input against Rules and stores the validated fields. Unknown
// keys are dropped. A validation failure is returned as *validation.Errors.
func (s *Service) Save(ctx context.Context, input map[string]string) (Settings, error) {
	v := validation.Make(input, Rules)
	if v.Fails() {
		return Settings{}, v.Errors()
	}

	values := v.Validated()
	if raw, ok := values["analytics_enabled"]; ok {
		values["analytics_enabled"] = strconv.FormatBool(truthy(raw))
	}
	if raw, ok := values["retention_days"]; ok {
		values["retention_days"] = strings.TrimSpace(raw)
	}

	if err := s.repo.Put(ctx, values); err != nil {
		return Settings{}, err
	}
	return s.Load(ctx)
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
