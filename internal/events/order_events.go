package events

// TopicOrderTransitioned is the single bus topic every committed order
// mutation is published on.
const TopicOrderTransitioned = "order.transitioned"

// RecipientSpec declares who a transition wants notified. The listener
// resolves it to concrete user ids after commit, so the engine never
// blocks on directory lookups inside its transaction.
type RecipientSpec struct {
	UserIDs        []uint64
	Roles          []string
	BranchID       uint64
	BranchRoles    []string
	AllActive      bool
	ExcludeUserIDs []uint64
}

// OrderEvent is published after a transition transaction commits. Title
// and Body are already rendered; the listener only resolves recipients
// and persists the rows.
type OrderEvent struct {
	EventType   string
	OrderID     uint64
	OrderNumber string
	ActorID     *uint64
	FromStatus  string
	ToStatus    string
	Title       string
	Body        string
	Recipients  RecipientSpec
}

func (e OrderEvent) Name() string {
	return TopicOrderTransitioned
}
