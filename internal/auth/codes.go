package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CodeSource obtains an authorization code for the consent URL authURL.
type CodeSource interface {
	Code(ctx context.Context, authURL, state string) (string, error)
}

// PromptCodeSource prints the consent URL and reads the pasted code. A pasted
// redirect URL is accepted too; its code parameter is used.
type PromptCodeSource struct {
	In  io.Reader
	Out io.Writer
}

// Code prints authURL and reads the code, or the full redirect URL, from In.
func (p *PromptCodeSource) Code(ctx context.Context, authURL, state string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(p.Out, "\nPlease go to this URL and authorize the application:\n\n  %s\n\nEnter the authorization code: ", authURL)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	code := strings.TrimSpace(line)
	if u, err := url.Parse(code); err == nil && u.Query().Get("code") != "" {
		if got := u.Query().Get("state"); got != "" && got != state {
			return "", fmt.Errorf("state mismatch in pasted redirect URL")
		}
		code = u.Query().Get("code")
	}
	if code == "" {
		return "", fmt.Errorf("no authorization code entered")
	}
	return code, nil
}

// CallbackCodeSource serves the redirect URL locally and captures the code
// Google redirects the browser to.
type CallbackCodeSource struct {
	RedirectURL string
	Out         io.Writer
	// Timeout bounds the wait for the browser. Zero waits until ctx is done.
	Timeout time.Duration
}

// Code serves the redirect URI until the browser delivers the code. It gives
// up when ctx ends or Timeout elapses.
func (c *CallbackCodeSource) Code(ctx context.Context, authURL, state string) (string, error) {
	u, err := url.Parse(c.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect url: %w", err)
	}
	if u.Scheme != "http" {
		return "", fmt.Errorf("callback server needs an http redirect url, got %q", c.RedirectURL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "Authentication failed: state mismatch. You can close this tab.", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("state mismatch in callback"):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			fmt.Fprint(w, "Authentication failed. You can close this tab.")
			select {
			case errCh <- fmt.Errorf("no code in callback: %s", q.Get("error")):
			default:
			}
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		fmt.Fprint(w, "Authentication successful! You can close this tab.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go server.Serve(listener)
	defer server.Shutdown(context.WithoutCancel(ctx))

	if c.Out != nil {
		fmt.Fprintf(c.Out, "\nOpen this URL in your browser to authorize gbp-toolkit:\n\n  %s\n\nWaiting for authorization...\n", authURL)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
