package cli

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and exchanges them for a bearer token.
//
// On success the token is handed to the sync coordinator (which installs it
// on the transport) and the queue drains in the background if connectivity
// allows. A token that is already expired is reported but still installed, so
// the next sync attempt surfaces the authorization failure explicitly.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	token, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	if expired, err := client.TokenExpired(token, time.Now()); err == nil && expired {
		log.Printf("Warning: received token is already expired")
	}

	a.email = email
	a.coordinator.Initialize(token)
	a.monitor.SetOnline(true)
	log.Printf("Login successful")

	go func() {
		if _, err := a.coordinator.SyncPending(context.Background()); err != nil {
			a.logger.Error(context.Background(), "post-login sync failed", "error", err)
		}
	}()

	return nil
}
