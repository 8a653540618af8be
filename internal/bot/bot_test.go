package bot

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cases := []struct {
		in        string
		cmd       string
		args      []string
		isCommand bool
	}{
		{"/start", "start", nil, true},
		{"/BAN 123", "ban", []string{"123"}, true},
		{"/lim 5 extra", "lim", []string{"5", "extra"}, true},
		{"/stats@webgrab_bot", "stats", nil, true},
		{"  /cancel  ", "cancel", nil, true},
		{"https://example.com", "", nil, false},
		{"plain text", "", nil, false},
		{"/", "", nil, false},
		{"", "", nil, false},
	}

	for _, c := range cases {
		cmd, args, ok := p.ParseCommand(c.in)
		if ok != c.isCommand {
			t.Fatalf("ParseCommand(%q): isCommand = %v, ожидалось %v", c.in, ok, c.isCommand)
		}
		if cmd != c.cmd {
			t.Fatalf("ParseCommand(%q): cmd = %q, ожидалось %q", c.in, cmd, c.cmd)
		}
		if !reflect.DeepEqual(args, c.args) {
			t.Fatalf("ParseCommand(%q): args = %v, ожидалось %v", c.in, args, c.args)
		}
	}
}

func TestWelcomeTextMentionsAdmin(t *testing.T) {
	got := welcomeText("@operator")
	if !strings.Contains(got, "@operator") {
		t.Fatalf("в приветствии нет хэндла админа: %q", got)
	}
}
