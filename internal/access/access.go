package access

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Action is a capability gated by the user's plan.
type Action string

const (
	ActionUploadTemplate  Action = "upload_template"
	ActionEditTemplate    Action = "edit_template"
	ActionDeleteTemplate  Action = "delete_template"
	ActionProcessDocument Action = "process_document"
)

// Resource is a countable quota bucket.
type Resource string

const (
	ResourceDocuments Resource = "documents"
	ResourceTemplates Resource = "templates"
)

var (
	// ErrPermissionDenied marks actions the user's plan does not allow.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrQuotaExceeded marks requests past the plan's usage limits.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// Unlimited disables a limit when used as its value.
const Unlimited = -1

// Plan bundles the capabilities and limits of a subscription tier.
type Plan struct {
	Name                string `json:"name" yaml:"name"`
	MaxTemplates        int    `json:"max_templates" yaml:"max_templates"`
	MaxDocumentsMonth   int    `json:"max_documents_per_month" yaml:"max_documents_per_month"`
	CanUploadTemplates  bool   `json:"can_upload_templates" yaml:"can_upload_templates"`
	CanEditTemplates    bool   `json:"can_edit_templates" yaml:"can_edit_templates"`
	CanDeleteTemplates  bool   `json:"can_delete_templates" yaml:"can_delete_templates"`
	CanProcessDocuments bool   `json:"can_process_documents" yaml:"can_process_documents"`
}

// Allows reports whether the plan permits the action.
func (p Plan) Allows(action Action) bool {
	switch action {
	case ActionUploadTemplate:
		return p.CanUploadTemplates
	case ActionEditTemplate:
		return p.CanEditTemplates
	case ActionDeleteTemplate:
		return p.CanDeleteTemplates
	case ActionProcessDocument:
		return p.CanProcessDocuments
	}
	return false
}

// DefaultPlans returns the built-in subscription tiers.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		"free": {
			Name:                "free",
			MaxTemplates:        3,
			MaxDocumentsMonth:   10,
			CanUploadTemplates:  true,
			CanEditTemplates:    true,
			CanDeleteTemplates:  false,
			CanProcessDocuments: true,
		},
		"basic": {
			Name:                "basic",
			MaxTemplates:        10,
			MaxDocumentsMonth:   50,
			CanUploadTemplates:  true,
			CanEditTemplates:    true,
			CanDeleteTemplates:  true,
			CanProcessDocuments: true,
		},
		"premium": {
			Name:                "premium",
			MaxTemplates:        50,
			MaxDocumentsMonth:   200,
			CanUploadTemplates:  true,
			CanEditTemplates:    true,
			CanDeleteTemplates:  true,
			CanProcessDocuments: true,
		},
		"enterprise": {
			Name:                "enterprise",
			MaxTemplates:        Unlimited,
			MaxDocumentsMonth:   Unlimited,
			CanUploadTemplates:  true,
			CanEditTemplates:    true,
			CanDeleteTemplates:  true,
			CanProcessDocuments: true,
		},
	}
}

// Controller answers permission and quota questions before work starts.
type Controller interface {
	// CheckPermission returns nil when the user may perform the action and
	// an error wrapping ErrPermissionDenied otherwise.
	CheckPermission(ctx context.Context, userID string, action Action) error

	// CheckQuota returns how many units of the resource the user has left,
	// or an error wrapping ErrQuotaExceeded when none remain. Unlimited
	// plans report Unlimited.
	CheckQuota(ctx context.Context, userID string, resource Resource) (int, error)
}

// UsageCounter reports recorded consumption for quota checks.
type UsageCounter interface {
	CountSince(ctx context.Context, userID, resource string, since time.Time) (int, error)
}

// Options configure plan assignment for a PlanController.
type Options struct {
	// Plans overrides the built-in tier table when non-nil.
	Plans map[string]Plan

	// DefaultPlan names the tier applied to users without an override.
	DefaultPlan string

	// UserPlans maps individual user IDs to tier names.
	UserPlans map[string]string
}

// PlanController enforces the tier table against recorded usage.
type PlanController struct {
	opts  Options
	usage UsageCounter
	now   func() time.Time
}

// NewPlanController creates a controller over the given usage counter.
func NewPlanController(opts Options, usage UsageCounter) *PlanController {
	if opts.Plans == nil {
		opts.Plans = DefaultPlans()
	}
	if opts.DefaultPlan == "" {
		opts.DefaultPlan = "free"
	}
	return &PlanController{opts: opts, usage: usage, now: time.Now}
}

// PlanFor resolves the tier assigned to a user. Unknown tier names fall
// back to the free plan.
func (c *PlanController) PlanFor(userID string) Plan {
	name := c.opts.DefaultPlan
	if override, ok := c.opts.UserPlans[userID]; ok {
		name = override
	}
	if plan, ok := c.opts.Plans[name]; ok {
		return plan
	}
	return c.opts.Plans["free"]
}

func (c *PlanController) CheckPermission(_ context.Context, userID string, action Action) error {
	plan := c.PlanFor(userID)
	if !plan.Allows(action) {
		return fmt.Errorf("plan %s does not allow %s: %w", plan.Name, action, ErrPermissionDenied)
	}
	return nil
}

func (c *PlanController) CheckQuota(ctx context.Context, userID string, resource Resource) (int, error) {
	if resource != ResourceDocuments {
		return 0, fmt.Errorf("unknown quota resource %q", resource)
	}

	plan := c.PlanFor(userID)
	if plan.MaxDocumentsMonth == Unlimited {
		return Unlimited, nil
	}

	now := c.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := c.usage.CountSince(ctx, userID, string(resource), monthStart)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s usage: %w", resource, err)
	}

	remaining := plan.MaxDocumentsMonth - used
	if remaining <= 0 {
		return 0, fmt.Errorf("monthly document limit %d reached on plan %s: %w",
			plan.MaxDocumentsMonth, plan.Name, ErrQuotaExceeded)
	}
	return remaining, nil
}

// CheckTemplateLimit reports whether a user already holding currentCount
// templates may store another one.
func (c *PlanController) CheckTemplateLimit(userID string, currentCount int) error {
	plan := c.PlanFor(userID)
	if plan.MaxTemplates == Unlimited {
		return nil
	}
	if currentCount >= plan.MaxTemplates {
		return fmt.Errorf("template limit %d reached on plan %s: %w",
			plan.MaxTemplates, plan.Name, ErrQuotaExceeded)
	}
	return nil
}
