package domain

// Action is an operation checked by CanModify.
type Action string

// Actions on owned resources.
const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Ownable is a resource with an owning user.
type Ownable interface {
	OwnerUserID() string
	// AdminMay reports whether an admin may perform action regardless of
	// ownership.
	AdminMay(action Action) bool
}

// OwnerUserID implements Ownable.
func (b *Business) OwnerUserID() string { return b.OwnerID }

// AdminMay implements Ownable. Admins may update and delete any business.
func (b *Business) AdminMay(Action) bool { return true }

// OwnerUserID implements Ownable.
func (r *Review) OwnerUserID() string { return r.UserID }

// AdminMay implements Ownable. Admins may delete, but never rewrite, a
// review.
func (r *Review) AdminMay(action Action) bool { return action == ActionDelete }

// CanModify is the single ownership and role check for mutating a resource.
// Anonymous actors can modify nothing.
func CanModify(actor Actor, resource Ownable, action Action) bool {
	if actor.Anonymous() || resource == nil {
		return false
	}
	if resource.OwnerUserID() == actor.UserID {
		return true
	}
	return actor.IsAdmin() && resource.AdminMay(action)
}
