package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"merek-automation/internal/scrapers/merek"

	"github.com/jedib0t/go-pretty/v6/table"
)

func readSession() (merek.Session, error) {
	data, err := os.ReadFile(sessionPath)
	if os.IsNotExist(err) {
		return merek.Session{}, fmt.Errorf("no session at %s, run `merek-cli login` first", sessionPath)
	}
	if err != nil {
		return merek.Session{}, err
	}
	var session merek.Session
	err = json.Unmarshal(data, &session)
	if err != nil {
		return merek.Session{}, fmt.Errorf("parse session %s: %w", sessionPath, err)
	}
	return session, nil
}

func writeSession(session merek.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(sessionPath)
	if dir != "." {
		err = os.MkdirAll(dir, 0700)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(sessionPath, data, 0600)
}

// finish keeps the session the step handed back, whatever its outcome, and turns
// a failed outcome into the command's error. A step that never got as far as a
// cookie jar leaves the session file alone.
func finish[T any](outcome merek.Outcome[T]) (T, error) {
	return keep(outcome, outcome.Session.HasCookies())
}

// finishLogin only replaces the session file once the portal accepted the login,
// a failed attempt must not log out the session that is already there.
func finishLogin(outcome merek.Outcome[merek.LoginResult]) (merek.LoginResult, error) {
	return keep(outcome, outcome.Ok())
}

func keep[T any](outcome merek.Outcome[T], write bool) (T, error) {
	if write {
		err := writeSession(outcome.Session)
		if err != nil {
			return outcome.Value, fmt.Errorf("write session: %w", err)
		}
	}
	return outcome.Value, outcome.Err()
}

func printJson(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
