// Package herbst talks to herbstluftwm through herbstclient.
package herbst

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TagState is a tag's status as reported by `herbstclient tag_status`.
type TagState int

const (
	TagEmpty TagState = iota
	TagNonEmpty
	TagThisMonitorUnfocused
	TagThisMonitorFocused
	TagOtherMonitorUnfocused
	TagOtherMonitorFocused
	TagUrgent
)

var stateSymbols = map[rune]TagState{
	'.': TagEmpty,
	':': TagNonEmpty,
	'+': TagThisMonitorUnfocused,
	'#': TagThisMonitorFocused,
	'-': TagOtherMonitorUnfocused,
	'%': TagOtherMonitorFocused,
	'!': TagUrgent,
}

// StateFromSymbol maps a tag_status prefix symbol to its state.
func StateFromSymbol(sym rune) (TagState, bool) {
	st, ok := stateSymbols[sym]
	return st, ok
}

func (s TagState) String() string {
	switch s {
	case TagEmpty:
		return "empty"
	case TagNonEmpty:
		return "non_empty"
	case TagThisMonitorUnfocused:
		return "this_monitor_unfocused"
	case TagThisMonitorFocused:
		return "this_monitor_focused"
	case TagOtherMonitorUnfocused:
		return "other_monitor_unfocused"
	case TagOtherMonitorFocused:
		return "other_monitor_focused"
	case TagUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// Tag is one entry of a tag_status line.
type Tag struct {
	State TagState
	Name  string
}

// ParseTag parses a single "<symbol><name>" entry.
func ParseTag(s string) (Tag, bool) {
	sym, size := utf8.DecodeRuneInString(s)
	if size == 0 || sym == utf8.RuneError {
		return Tag{}, false
	}
	st, ok := StateFromSymbol(sym)
	if !ok {
		return Tag{}, false
	}
	return Tag{State: st, Name: s[size:]}, true
}

// ParseTagStatus parses tab-separated tag_status output.
// Entries with an unknown state symbol are dropped.
func ParseTagStatus(out string) []Tag {
	var tags []Tag
	for _, field := range strings.Split(strings.TrimRight(out, "\r\n"), "\t") {
		if tag, ok := ParseTag(field); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// AnyFocused reports whether one of tags is focused on this monitor.
func AnyFocused(tags []Tag) bool {
	for _, t := range tags {
		if t.State == TagThisMonitorFocused {
			return true
		}
	}
	return false
}

// DefaultCommand is the herbstclient binary looked up in PATH.
const DefaultCommand = "herbstclient"

// IdleHooks are the hooks that change what the tag list shows.
const IdleHooks = "tag_changed|tag_renamed"

// ErrNotAvailable is returned when herbstclient cannot be found.
var ErrNotAvailable = errors.New("herbstclient is not available in PATH")

// Client runs herbstclient commands.
type Client struct {
	command string
}

// NewClient returns a client for the given herbstclient binary.
// An empty command means DefaultCommand.
func NewClient(command string) *Client {
	if command == "" {
		command = DefaultCommand
	}
	return &Client{command: command}
}

// Command returns the herbstclient binary this client runs.
func (c *Client) Command() string {
	return c.command
}

// Available returns true if herbstclient can be found.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.command)
	return err == nil
}

// TagStatus queries the tags of one monitor.
func (c *Client) TagStatus(ctx context.Context, monitor int) ([]Tag, error) {
	cmd := exec.CommandContext(ctx, c.command, "tag_status", strconv.Itoa(monitor))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, ErrNotAvailable
		}
		return nil, fmt.Errorf("herbstclient tag_status %d failed: %w: %s", monitor, err, strings.TrimSpace(stderr.String()))
	}
	return ParseTagStatus(string(out)), nil
}

// IdleArgs returns the arguments of the long-running watcher that prints a
// line for every tag change.
func (c *Client) IdleArgs() []string {
	return []string{c.command, "--idle", IdleHooks}
}
