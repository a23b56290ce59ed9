package people

import (
	"context"
	"strings"

	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/permission"
)

// RegisterGate installs the people permission hook: every people-suffixed
// action except view-people is reserved for administrators, regardless of
// what explicit grants the caller holds. Viewing stays open so directory
// listings keep working for everyone.
func RegisterGate(perms *permission.Service) {
	perms.Register("people-admin-only", func(ctx context.Context, id *model.Identity, action string) permission.Response {
		if strings.HasSuffix(action, "-people") && action != "view-people" && !id.Admin() {
			return permission.Forbidden
		}
		return permission.Allow
	})
}
