package auth

// Action names an entity-level operation subject to ownership rules.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAccept Action = "accept" // accept an answer; resource is the question
)

// Anonymous is the identity assigned to unauthenticated requests.
const Anonymous = "anonymous"

// Owned is satisfied by entities that record their creating identity.
type Owned interface {
	Owner() string
}

// Can decides whether the identity may perform the action on the resource.
// Every ownership rule of the application lives here: update and delete
// require the recorded author, and accepting an answer requires the
// question's author. Anonymous identities can never act on entities.
func Can(identity string, action Action, resource Owned) bool {
	if identity == "" || identity == Anonymous {
		return false
	}
	switch action {
	case ActionUpdate, ActionDelete, ActionAccept:
		return resource.Owner() == identity
	}
	return false
}
