// internal/repository/realtime/request_store.go
package realtime

import (
	"context"
	"encoding/json"
	"strconv"

	"ustaad-service/internal/domain/request"
	xerrors "ustaad-service/internal/pkg/errors"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds how often Transition re-runs after a concurrent write
// invalidated its WATCH.
const maxTxRetries = 5

// RequestStore keeps service requests in Redis:
//
//	request:{id}                 JSON record
//	requests:customer:{id}       zset of a customer's request IDs by creation time
//	requests:pending             zset of all pending request IDs
//	requests:pending:{type}      zset of pending request IDs per service type
type RequestStore struct {
	c *redis.Client
}

func NewRequestStore(c *redis.Client) *RequestStore {
	return &RequestStore{c: c}
}

func (s *RequestStore) Create(ctx context.Context, r *request.ServiceRequest) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	score := float64(r.CreatedAt.UnixMilli())
	_, err = s.c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(r.ID), data, 0)
		pipe.ZAdd(ctx, customerKey(r.CustomerID), redis.Z{Score: score, Member: r.ID})
		if r.IsPending() {
			pipe.ZAdd(ctx, pendingKey, redis.Z{Score: score, Member: r.ID})
			pipe.ZAdd(ctx, pendingTypeKey(r.ServiceType), redis.Z{Score: score, Member: r.ID})
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis create request")
	}
	return nil
}

// Get returns xerrors.ErrNotFound for an unknown id.
func (s *RequestStore) Get(ctx context.Context, id string) (*request.ServiceRequest, error) {
	data, err := s.c.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get request")
	}
	return decode(data)
}

// ListByCustomer returns the newest requests first.
func (s *RequestStore) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]*request.ServiceRequest, error) {
	ids, err := s.c.ZRevRange(ctx, customerKey(customerID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis list customer requests")
	}
	return s.load(ctx, ids)
}

// ListPending returns the oldest pending requests first. An empty serviceType
// lists every type.
func (s *RequestStore) ListPending(ctx context.Context, serviceType string, limit int) ([]*request.ServiceRequest, error) {
	key := pendingKey
	if serviceType != "" {
		key = pendingTypeKey(serviceType)
	}
	ids, err := s.c.ZRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis list pending requests")
	}

	all, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	// The index can briefly lag a transition.
	out := all[:0]
	for _, r := range all {
		if r.IsPending() {
			out = append(out, r)
		}
	}
	return out, nil
}

// Transition applies mutate to the stored request inside a WATCH/MULTI
// transaction on its key. If mutate returns an error nothing is written and
// that error is returned. A missing record yields xerrors.ErrNotFound.
func (s *RequestStore) Transition(ctx context.Context, id string, mutate request.Mutator) (*request.ServiceRequest, error) {
	key := recordKey(id)
	var updated *request.ServiceRequest

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return xerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "redis read request")
		}

		r, err := decode(data)
		if err != nil {
			return err
		}
		wasPending := r.IsPending()

		if err := mutate(r); err != nil {
			return err
		}

		next, err := json.Marshal(r)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			if wasPending && !r.IsPending() {
				pipe.ZRem(ctx, pendingKey, r.ID)
				pipe.ZRem(ctx, pendingTypeKey(r.ServiceType), r.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = r
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.c.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, errors.Wrap(redis.TxFailedErr, "request transition retries exhausted")
}

func (s *RequestStore) load(ctx context.Context, ids []string) ([]*request.ServiceRequest, error) {
	if len(ids) == 0 {
		return []*request.ServiceRequest{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}

	vals, err := s.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis mget requests")
	}

	out := make([]*request.ServiceRequest, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		r, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func decode(data []byte) (*request.ServiceRequest, error) {
	var r request.ServiceRequest
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "unmarshal request")
	}
	return &r, nil
}

const pendingKey = "requests:pending"

func recordKey(id string) string {
	return "request:" + id
}

func customerKey(customerID int64) string {
	return "requests:customer:" + strconv.FormatInt(customerID, 10)
}

func pendingTypeKey(serviceType string) string {
	return pendingKey + ":" + serviceType
}
