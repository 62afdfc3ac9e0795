package checkpoint

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bitbandi/ltcspv/pkg/spvstore"
)

// Seeder populates a freshly created Mapped Ring Store from a checkpoint
// archive, so a new wallet doesn't have to download and validate headers
// from genesis.
type Seeder struct {
	Logger *zap.Logger
}

// birthdayDriftSlack is subtracted from the wallet birthday before looking
// up a checkpoint, per spec.md §4.6, to absorb clock skew between the
// wallet's recorded birthday and the timestamp actually embedded in the
// block headers around it.
const birthdayDriftSlack = 7 * 24 * time.Hour

// Seed inserts the checkpoint (and, where available, its height-minus-one
// companion) nearest to but before walletBirthday-driftSlack into store, and
// sets it as the chain head. CheckpointsBefore always returns at least a
// synthesized genesis (spec.md §4.5), so Seed never fails on "no checkpoint
// found"; it only fails if the store itself rejects an insert or the head.
func (s *Seeder) Seed(store *spvstore.Store, archive *Archive, walletBirthday time.Time) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cutoff := walletBirthday.Add(-birthdayDriftSlack)

	checkpoints := archive.CheckpointsBefore(cutoff)

	for _, cp := range checkpoints {
		if err := store.Put(cp); err != nil {
			return fmt.Errorf("seeding checkpoint at height %d: %w", cp.Height, err)
		}
	}

	head := checkpoints[len(checkpoints)-1]
	if err := store.SetChainHead(head); err != nil {
		return fmt.Errorf("setting chain head to height %d: %w", head.Height, err)
	}

	logger.Info("seeded store from checkpoint archive",
		zap.Time("birthday", walletBirthday),
		zap.Int32("chain_head_height", head.Height),
		zap.Int("checkpoints_written", len(checkpoints)),
	)

	return nil
}
