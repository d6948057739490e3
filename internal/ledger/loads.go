package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcules/motor-speed/internal/artifact"
)

const recordTimeout = 2 * time.Second

// RecordLoad stores a load result and warns when the artifact's content
// differs from the previous recorded load. Errors are logged, not returned;
// it matches artifact.Loader.Notify.
func (s *Store) RecordLoad(r artifact.Result) {
	if r.Status == artifact.StatusSkipped {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	name := r.Kind.String()
	if r.Digest != "" {
		prev, ok, err := s.LastDigest(ctx, name)
		if err != nil {
			log.Error().Err(err).Str("artifact", name).Msg("ledger lookup failed")
		} else if ok && prev != r.Digest {
			log.Warn().Str("artifact", name).Str("previous", prev).Str("current", r.Digest).
				Msg("artifact content changed since last recorded load")
		}
	}

	_, err := s.Record(ctx, LoadRecord{
		Artifact: name,
		Path:     r.Path,
		Digest:   r.Digest,
		Status:   string(r.Status),
		Note:     r.Message,
		LoadedAt: r.At,
	})
	if err != nil {
		log.Error().Err(err).Str("artifact", name).Msg("ledger write failed")
	}
}
