package auth

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// ConfigFromFile reads a Google client secret file (credentials.json).
func ConfigFromFile(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	return cfg, nil
}

// Login walks the user through the authorization-code flow in the terminal
// and stores the resulting credentials.
func Login(ctx context.Context, cfg *oauth2.Config, store Store, state string, in io.Reader, out io.Writer) (Credentials, error) {
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(out, "Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Fscan(in, &authCode); err != nil {
		return Credentials{}, fmt.Errorf("unable to read authorization code: %w", err)
	}
	tok, err := cfg.Exchange(ctx, authCode)
	if err != nil {
		return Credentials{}, fmt.Errorf("unable to retrieve token from web: %w", err)
	}

	creds := FromOAuth2(tok)
	if err := store.Save(creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
