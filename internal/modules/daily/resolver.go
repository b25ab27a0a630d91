package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clock"
)

// The memory tier lives in the shared TTL cache under these keys. The
// day tag on the entry, not the TTL, decides freshness: an entry tagged
// with yesterday is a miss even if its TTL has not elapsed.
const memTTL = 24 * time.Hour

func memKey(class DataClass) string {
	return "daily_" + string(class)
}

type memEntry struct {
	payload   interface{}
	day       string
	updatedAt time.Time
}

// Resolver satisfies daily reads through memory, then the durable
// store, then a live fetch with write-back to both tiers.
type Resolver struct {
	clock    *clock.Clock
	cache    *cache.Cache
	store    *Store
	fetchers map[DataClass]Fetcher
	log      zerolog.Logger
}

// NewResolver creates a resolver over the given tiers.
func NewResolver(clk *clock.Clock, c *cache.Cache, store *Store, fetchers map[DataClass]Fetcher, log zerolog.Logger) *Resolver {
	return &Resolver{
		clock:    clk,
		cache:    c,
		store:    store,
		fetchers: fetchers,
		log:      log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns today's payload for the class, tagged with its source.
// It never substitutes another day's data: a stale memory entry or a
// store row for a different day is simply a miss.
func (r *Resolver) Resolve(ctx context.Context, class DataClass) (Resolution, error) {
	day := r.clock.Today()

	if v, ok := r.cache.Get(memKey(class)); ok {
		if e, ok := v.(memEntry); ok && e.day == day {
			return Resolution{Payload: e.payload, Source: SourceMemory, Day: day, LastUpdated: e.updatedAt}, nil
		}
	}

	raw, found, err := r.store.Load(class, day)
	if err != nil {
		// Read failure surfaces as absent; the live tier is next.
		r.log.Warn().Err(err).Str("class", string(class)).Msg("Durable load failed")
	}
	if found {
		payload, err := decodePayload(class, raw)
		if err != nil {
			r.log.Warn().Err(err).Str("class", string(class)).Msg("Stored payload undecodable, refetching")
		} else {
			now := r.clock.Now()
			r.cache.Put(memKey(class), memEntry{payload: payload, day: day, updatedAt: now}, memTTL)
			return Resolution{Payload: payload, Source: SourceDurable, Day: day, LastUpdated: now}, nil
		}
	}

	fetcher, ok := r.fetchers[class]
	if !ok {
		return Resolution{Source: SourceError, Day: day}, fmt.Errorf("no fetcher registered for class %q", class)
	}

	r.log.Warn().Str("class", string(class)).Str("day", day).Msg("No cached data, fetching live")
	payload, err := fetcher.Fetch(ctx, day)
	if err != nil {
		return Resolution{Source: SourceError, Day: day}, fmt.Errorf("live fetch for %s: %w", class, err)
	}

	now := r.commit(class, day, payload)
	return Resolution{Payload: payload, Source: SourceLive, Day: day, LastUpdated: now}, nil
}

// Warm writes a freshly fetched payload through both tiers. Used by the
// scheduled refresh so later reads resolve from memory.
func (r *Resolver) Warm(class DataClass, day string, payload interface{}) {
	r.commit(class, day, payload)
}

// commit populates the memory tier first, then the durable store. A
// store failure is logged and swallowed: the memory tier still serves
// the current process, which is the availability fallback.
func (r *Resolver) commit(class DataClass, day string, payload interface{}) time.Time {
	now := r.clock.Now()
	r.cache.Put(memKey(class), memEntry{payload: payload, day: day, updatedAt: now}, memTTL)

	if err := r.store.Save(class, day, payload); err != nil {
		r.log.Error().Err(err).Str("class", string(class)).Msg("Durable save failed, serving from memory only")
	}
	return now
}

// ClassStatus is per-class tier presence for the status endpoint.
type ClassStatus struct {
	InMemory  bool `json:"in_memory"`
	InDurable bool `json:"in_durable"`
}

// Status reports, for today, which tiers hold each class.
func (r *Resolver) Status() map[DataClass]ClassStatus {
	day := r.clock.Today()
	out := make(map[DataClass]ClassStatus, len(AllClasses))
	for _, class := range AllClasses {
		var inMem bool
		if v, ok := r.cache.Get(memKey(class)); ok {
			if e, ok := v.(memEntry); ok && e.day == day {
				inMem = true
			}
		}
		out[class] = ClassStatus{
			InMemory:  inMem,
			InDurable: r.store.Has(class, day),
		}
	}
	return out
}

// decodePayload rehydrates a stored payload into its typed form.
func decodePayload(class DataClass, raw json.RawMessage) (interface{}, error) {
	var (
		payload interface{}
		err     error
	)
	switch class {
	case ClassPitchers:
		p := &PitcherPayload{}
		err = json.Unmarshal(raw, p)
		payload = p
	case ClassHitters:
		p := &HitterPayload{}
		err = json.Unmarshal(raw, p)
		payload = p
	case ClassSchedule:
		p := &SchedulePayload{}
		err = json.Unmarshal(raw, p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown data class %q", class)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", class, err)
	}
	return payload, nil
}
