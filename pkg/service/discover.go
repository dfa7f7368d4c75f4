package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/formatter"
	"github.com/quill-social/quill/pkg/kvstore"
	"github.com/quill-social/quill/pkg/logger"
	"github.com/quill-social/quill/pkg/output"
	"github.com/quill-social/quill/pkg/prompter"
	"github.com/quill-social/quill/pkg/swipe"
)

// DiscoverService runs the follow/pass discovery queue
type DiscoverService struct {
	manager   *swipe.Manager
	quota     *swipe.DailyQuota
	cooldowns *swipe.CooldownStore
}

// NewDiscoverService builds the discovery queue over store
func NewDiscoverService(store kvstore.Store) *DiscoverService {
	log := logger.GetLogger()
	quota := swipe.NewDailyQuota(store, swipe.WithQuotaLogger(log))
	cooldowns := swipe.NewCooldownStore(store, swipe.WithCooldownLogger(log))

	return &DiscoverService{
		manager: swipe.NewManager(swipe.Deps{
			Candidates:    CandidateDirectory{},
			Oracle:        ProfileOracle{},
			Relationships: FollowGraph{},
			Quota:         quota,
			Cooldowns:     cooldowns,
		}, swipe.WithLogger(log)),
		quota:     quota,
		cooldowns: cooldowns,
	}
}

// Run shows one candidate at a time until the user quits, the pool runs
// out or today's swipes are used up
func (ds *DiscoverService) Run(ctx context.Context) error {
	creds, err := RequireSession(ctx)
	if err != nil {
		return err
	}

	formatter.PrintInfo("Finding people to follow...")
	if err := ds.manager.Initialize(ctx, creds.UserID); err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	w := output.Writer()
	for {
		switch ds.manager.Snapshot().Phase {
		case swipe.PhaseDailyLimitReached:
			formatter.PrintWarning("You've used all %d swipes for today. Come back tomorrow!", ds.quota.Limit())
			return nil
		case swipe.PhaseExhausted:
			formatter.PrintInfo("You've seen everyone for now. Passed profiles come back after %s.",
				formatter.Plural(int(swipe.RejectionCooldown.Hours()), "hour", "hours"))
			return nil
		}

		id, ok := ds.manager.Current()
		if !ok {
			return swipe.ErrNotReady
		}

		profile, err := ds.manager.CurrentProfile(ctx)
		if err != nil {
			logger.Warn("Profile details unavailable", "candidate", id, "err", err)
			profile = &api.Profile{ID: id, Username: id}
		}

		fmt.Fprintln(w)
		fmt.Fprint(w, formatter.ProfileCard(profile))
		if remaining, err := ds.quota.Remaining(ctx); err == nil {
			formatter.Faint.Fprintf(w, "  %s left today\n", formatter.Plural(remaining, "swipe", "swipes"))
		}

		key, err := prompter.PromptKey("[f]ollow, [p]ass or [q]uit?", "f", "p", "q")
		if err != nil {
			return err
		}

		switch key {
		case "q":
			return nil
		case "p":
			if err := ds.manager.Pass(ctx, id); err != nil {
				return err
			}
		case "f":
			if err := ds.manager.Follow(ctx, id); err != nil {
				if errors.Is(err, swipe.ErrFollowFailed) {
					formatter.PrintError("Could not follow %s (%v). Try again.", profile.Name(), err)
					continue
				}
				return err
			}
			formatter.PrintSuccess("Following %s", profile.Name())
		}
	}
}

// DiscoverStatus is the json form of Status
type DiscoverStatus struct {
	Date      string            `json:"date"`
	Used      int               `json:"used"`
	Remaining int               `json:"remaining"`
	Limit     int               `json:"limit"`
	Cooldowns []swipe.Rejection `json:"cooldowns"`
}

// Status prints today's quota and the profiles still cooling down
func (ds *DiscoverService) Status(ctx context.Context) error {
	rec, err := ds.quota.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read swipe quota: %w", err)
	}
	remaining, _ := ds.quota.Remaining(ctx)

	active, err := ds.cooldowns.Active(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cooldowns: %w", err)
	}

	if output.GetOutputFormat() == output.FormatJSON {
		if active == nil {
			active = []swipe.Rejection{}
		}
		return output.PrintList(DiscoverStatus{
			Date:      rec.Date,
			Used:      rec.Count,
			Remaining: remaining,
			Limit:     ds.quota.Limit(),
			Cooldowns: active,
		}, nil, nil)
	}

	if err := output.PrintRecord("Discovery", map[string]interface{}{
		"Swipes used":      fmt.Sprintf("%d / %d", rec.Count, ds.quota.Limit()),
		"Swipes remaining": remaining,
		"Cooling down":     len(active),
	}); err != nil {
		return err
	}

	if len(active) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(active))
	for _, r := range active {
		rows = append(rows, []string{
			r.ID,
			formatter.RelativeTime(time.UnixMilli(r.RejectedAt)),
			formatter.RelativeTime(r.Expiry()),
		})
	}
	fmt.Fprintln(output.Writer())
	return output.PrintList(active, []string{"PROFILE", "PASSED", "RETURNS"}, rows)
}

// Reset clears every cooldown and today's quota
func (ds *DiscoverService) Reset(ctx context.Context, skipConfirm bool) error {
	if !skipConfirm {
		confirm, err := prompter.PromptConfirm("Clear all passed profiles and today's swipe count?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	// With a session the queue is rebuilt right after the stores are cleared
	if creds := OptionalSession(ctx); creds != nil {
		if err := ds.manager.Initialize(ctx, creds.UserID); err != nil {
			logger.Warn("Discovery queue unavailable before reset", "err", err)
		}
	}

	if err := ds.manager.ResetAllCooldowns(ctx); err != nil {
		return fmt.Errorf("failed to reset discovery: %w", err)
	}

	formatter.PrintSuccess("Discovery reset. Every profile is eligible again.")
	if snap := ds.manager.Snapshot(); snap.UserID != "" {
		formatter.PrintInfo("%s ready to discover.", formatter.Plural(snap.PoolSize, "profile", "profiles"))
	}
	return nil
}
