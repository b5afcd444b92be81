package stream

import (
	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/orm"
)

const (
	// StreamBucketName is where the individual streams live.
	StreamBucketName = "stream"
	// AccountBucketName is where the receiver aggregates live.
	AccountBucketName = "strmacct"
	// ApprovalBucketName is where the claimer approvals live.
	ApprovalBucketName = "strmclaim"
)

var _ orm.CloneableData = (*Stream)(nil)

// Validate ensures the stream is sane.
func (m *Stream) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if m.Shares <= 0 {
		return errors.Wrap(errors.ErrAmount, "shares must be positive")
	}
	if m.Principal < 0 {
		return errors.Wrap(errors.ErrState, "negative principal")
	}
	return nil
}

// Copy produces a new stream with the same data.
func (m *Stream) Copy() orm.CloneableData {
	return &Stream{
		Metadata:  m.Metadata.Copy(),
		Receiver:  m.Receiver.Clone(),
		Shares:    m.Shares,
		Principal: m.Principal,
	}
}

var _ orm.CloneableData = (*ReceiverAccount)(nil)

// Validate ensures the aggregate is sane.
func (m *ReceiverAccount) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.TotalShares < 0 {
		return errors.Wrap(errors.ErrState, "negative total shares")
	}
	if m.TotalPrincipal < 0 {
		return errors.Wrap(errors.ErrState, "negative total principal")
	}
	return nil
}

// Copy produces a new account with the same data.
func (m *ReceiverAccount) Copy() orm.CloneableData {
	return &ReceiverAccount{
		Metadata:       m.Metadata.Copy(),
		TotalShares:    m.TotalShares,
		TotalPrincipal: m.TotalPrincipal,
	}
}

var _ orm.CloneableData = (*ClaimerApproval)(nil)

// Validate ensures the approval is sane.
func (m *ClaimerApproval) Validate() error {
	return errors.Wrap(m.Metadata.Validate(), "metadata")
}

// Copy produces a new approval with the same data.
func (m *ClaimerApproval) Copy() orm.CloneableData {
	return &ClaimerApproval{
		Metadata: m.Metadata.Copy(),
	}
}

// StreamBucket stores streams keyed by the registry issued id.
type StreamBucket struct {
	orm.Bucket
}

// NewStreamBucket initializes a stream bucket with the default name.
func NewStreamBucket() StreamBucket {
	return StreamBucket{
		Bucket: orm.NewBucket(StreamBucketName, orm.NewSimpleObj(nil, &Stream{})),
	}
}

// Get returns the stream stored under the id, or nil if absent.
func (b StreamBucket) Get(db yieldstream.ReadOnlyKVStore, id []byte) (*Stream, error) {
	obj, err := b.Bucket.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.Value().(*Stream), nil
}

// Save persists a stream under the given id.
func (b StreamBucket) Save(db yieldstream.KVStore, id []byte, s *Stream) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(id, s))
}

// AccountBucket stores the receiver aggregates keyed by address.
type AccountBucket struct {
	orm.Bucket
}

// NewAccountBucket initializes an account bucket with the default name.
func NewAccountBucket() AccountBucket {
	return AccountBucket{
		Bucket: orm.NewBucket(AccountBucketName, orm.NewSimpleObj(nil, &ReceiverAccount{})),
	}
}

// GetOrCreate returns the aggregate of the given receiver, falling back
// to an empty account.
func (b AccountBucket) GetOrCreate(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address) (*ReceiverAccount, error) {
	obj, err := b.Bucket.Get(db, receiver)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &ReceiverAccount{Metadata: &yieldstream.Metadata{Schema: 1}}, nil
	}
	return obj.Value().(*ReceiverAccount), nil
}

// Save persists the aggregate under the receiver address.
func (b AccountBucket) Save(db yieldstream.KVStore, receiver yieldstream.Address, acct *ReceiverAccount) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(receiver, acct))
}

// ApprovalBucket stores claimer approvals keyed by receiver|claimer. The
// presence of a record is the approval.
type ApprovalBucket struct {
	orm.Bucket
}

// NewApprovalBucket initializes an approval bucket with the default name.
func NewApprovalBucket() ApprovalBucket {
	return ApprovalBucket{
		Bucket: orm.NewBucket(ApprovalBucketName, orm.NewSimpleObj(nil, &ClaimerApproval{})),
	}
}

// approvalKey builds the composite receiver|claimer key.
func approvalKey(receiver, claimer yieldstream.Address) []byte {
	key := make([]byte, 0, len(receiver)+len(claimer))
	key = append(key, receiver...)
	return append(key, claimer...)
}

// Has returns true when the claimer is approved by the receiver.
func (b ApprovalBucket) Has(db yieldstream.ReadOnlyKVStore, receiver, claimer yieldstream.Address) (bool, error) {
	return b.Bucket.Has(db, approvalKey(receiver, claimer))
}

// Grant stores an approval.
func (b ApprovalBucket) Grant(db yieldstream.KVStore, receiver, claimer yieldstream.Address) error {
	a := &ClaimerApproval{Metadata: &yieldstream.Metadata{Schema: 1}}
	return b.Bucket.Save(db, orm.NewSimpleObj(approvalKey(receiver, claimer), a))
}

// Revoke removes an approval. Removing a missing approval is a no-op.
func (b ApprovalBucket) Revoke(db yieldstream.KVStore, receiver, claimer yieldstream.Address) error {
	return b.Bucket.Delete(db, approvalKey(receiver, claimer))
}
