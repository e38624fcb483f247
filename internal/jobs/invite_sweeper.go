package jobs

import (
	"context"
	"log"
	"time"

	"crately/internal/repositories"
)

// InviteSweeper reports invites that have expired without being redeemed.
// The token itself stays on the record: clearing it would turn the caller's
// "invite has expired" error into "invite not found", so the sweeper only
// surfaces the backlog for an admin to re-issue.
type InviteSweeper struct {
	userRepo repositories.UserRepository
}

func NewInviteSweeper(userRepo repositories.UserRepository) *InviteSweeper {
	return &InviteSweeper{userRepo: userRepo}
}

// SweepExpiredInvites scans for inactive users whose invite window has
// closed and logs them.
func (s *InviteSweeper) SweepExpiredInvites(ctx context.Context) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		log.Printf("Failed to list users for invite sweep: %v", err)
		return err
	}

	now := time.Now()
	expired := 0
	for _, user := range users {
		if user.IsActive || user.InviteToken == "" {
			continue
		}
		if user.InviteExpires == nil || now.After(*user.InviteExpires) {
			expired++
			log.Printf("Invite for user '%s' (%s) expired; needs a reset to activate", user.Name, user.ID)
		}
	}

	if expired == 0 {
		log.Println("Invite sweep: no expired invites")
	} else {
		log.Printf("Invite sweep: %d expired invite(s)", expired)
	}
	return nil
}
