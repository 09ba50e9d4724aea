package policy

import "github.com/diewo77/backoffice/internal/models"

// Ownable is implemented by records that belong to a single user.
type Ownable interface {
	GetUserID() uint
}

// CanAccess reports whether user may read or manage the resource.
// Staff bypass ownership; everyone else only reaches their own records.
// A nil resource (list/create) is always allowed; listing is scoped by
// the query itself.
func CanAccess(user *models.User, resource any) bool {
	if user == nil {
		return false
	}
	if resource == nil {
		return true
	}
	if user.IsStaff {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Records without ownership are denied by default.
		return false
	}
	return ownable.GetUserID() == user.ID
}
