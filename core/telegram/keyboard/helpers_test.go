package keyboard

import "testing"

func TestGrid(t *testing.T) {
	buttons := []InlineBtn{
		{Text: "Start", Unique: "pomo_start", Data: "1"},
		{Text: "Skip", Unique: "pomo_skip", Data: "1"},
		{Text: "Finish", Unique: "pomo_finish", Data: "1"},
	}
	markup := Grid(buttons, 2)
	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("layout = %+v", markup.InlineKeyboard)
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "Start" || first.Unique != "pomo_start" || first.Data != "1" {
		t.Fatalf("first button = %+v", first)
	}

	if single := Grid(buttons, 0); len(single.InlineKeyboard) != 3 {
		t.Fatalf("one per row = %d rows", len(single.InlineKeyboard))
	}
	if empty := Grid(nil, 3); len(empty.InlineKeyboard) != 0 {
		t.Fatalf("empty grid = %+v", empty.InlineKeyboard)
	}
}
