package scheduler

import (
	"context"
	"log"
	"time"

	"cavemindAPI/services"
)

// Jobs bundles the services the scheduled jobs drive.
type Jobs struct {
	Nudges     *services.NudgeService
	Reminders  *services.ReminderService
	Challenges *services.ChallengeService
}

// RegisterAll wires the fixed daily schedule: 09:00 behavioral nudge, 13:00
// microchallenge reminder, 20:00 spot reminder and the 00:10 sweep that
// finalizes assignments whose cycle elapsed without a read.
func (s *Scheduler) RegisterAll(jobs Jobs) error {
	if err := s.Register("0 9 * * *", "daily-nudge", func(ctx context.Context) error {
		report, err := jobs.Nudges.DispatchDaily(ctx)
		if err != nil {
			return err
		}
		log.Printf("scheduler: daily nudge %s: %d/%d push, %d/%d device, %d/%d whatsapp",
			report.NudgeID,
			report.PushSuccesses, report.PushTargets,
			report.DeviceSuccesses, report.DeviceTargets,
			report.MessageSuccesses, report.MessageTargets)
		return nil
	}); err != nil {
		return err
	}

	if err := s.Register("0 13 * * *", "challenge-reminder", func(ctx context.Context) error {
		sent, err := jobs.Reminders.SendChallengeReminders(ctx, time.Now())
		if err != nil {
			return err
		}
		log.Printf("scheduler: challenge reminders sent: %d", sent)
		return nil
	}); err != nil {
		return err
	}

	if err := s.Register("0 20 * * *", "spot-reminder", func(ctx context.Context) error {
		sent, err := jobs.Reminders.SendSpotReminders(ctx, time.Now())
		if err != nil {
			return err
		}
		log.Printf("scheduler: spot reminders sent: %d", sent)
		return nil
	}); err != nil {
		return err
	}

	return s.Register("10 0 * * *", "finalize-expired", func(ctx context.Context) error {
		n, err := jobs.Challenges.FinalizeExpired(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("scheduler: finalized %d expired assignments", n)
		}
		return nil
	})
}
