package compiler

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSerializeLine_Event(t *testing.T) {
	line := NewCodeLine(&PlayerEvent{Event: "Join"})

	data, err := SerializeLine(line)
	if err != nil {
		t.Fatalf("SerializeLine: %v", err)
	}
	want := `{"blocks":[{"id":"block","block":"event","args":{"items":[]},"action":"Join"}]}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
	if got := line.Name(); got != "Player Event: Join" {
		t.Errorf("Name() = %q, want %q", got, "Player Event: Join")
	}
}

func TestSerializeLine_EmptyLine(t *testing.T) {
	line := NewCodeLine()
	data, err := SerializeLine(line)
	if err != nil {
		t.Fatalf("SerializeLine: %v", err)
	}
	if string(data) != `{"blocks":[]}` {
		t.Errorf("got %s", data)
	}
	if got := line.Name(); got != "Empty" {
		t.Errorf("Name() = %q, want Empty", got)
	}
}

func TestSerializeStatement_Fragments(t *testing.T) {
	msg := NewParams().Param(Text{Value: "§a%default joined!"}).MustBuild()

	tests := []struct {
		name string
		stmt Statement
		want string
	}{
		{
			name: "player action",
			stmt: &PlayerAction{Action: "SendMessage", Params: msg, Target: SelectorAllPlayers},
			want: `{"id":"block","block":"player_action","args":{"items":[{"item":{"id":"txt","data":{"name":"§a%default joined!"}},"slot":0}]},"action":"SendMessage","target":"AllPlayers"}`,
		},
		{
			name: "entity event",
			stmt: &EntityEvent{Event: "EntityDmg"},
			want: `{"id":"block","block":"entity_event","args":{"items":[]},"action":"EntityDmg"}`,
		},
		{
			name: "set variable",
			stmt: &SetVariable{Action: "=", Params: NewParams().Param(Variable{Name: "count", Scope: ScopeSaved}).Param(Number{Value: 1}).MustBuild()},
			want: `{"id":"block","block":"set_var","args":{"items":[{"item":{"id":"var","data":{"name":"count","scope":"saved"}},"slot":0},{"item":{"id":"num","data":{"name":"1"}},"slot":1}]},"action":"="}`,
		},
		{
			name: "game action",
			stmt: &GameAction{Action: "CancelEvent"},
			want: `{"id":"block","block":"game_action","args":{"items":[]},"action":"CancelEvent"}`,
		},
		{
			name: "control",
			stmt: &Control{Action: "Wait", Params: NewParams().Param(Number{Value: 0.5}).MustBuild()},
			want: `{"id":"block","block":"control","args":{"items":[{"item":{"id":"num","data":{"name":"0.5"}},"slot":0}]},"action":"Wait"}`,
		},
		{
			name: "function",
			stmt: &Function{Name: "setup"},
			want: `{"id":"block","block":"func","args":{"items":[]},"data":"setup"}`,
		},
		{
			name: "process",
			stmt: &Process{Name: "tick"},
			want: `{"id":"block","block":"process","args":{"items":[]},"data":"tick"}`,
		},
		{
			name: "call function",
			stmt: &CallFunction{Name: "setup"},
			want: `{"id":"block","block":"call_func","args":{"items":[]},"data":"setup"}`,
		},
		{
			name: "call process",
			stmt: &CallProcess{Name: "tick"},
			want: `{"id":"block","block":"start_process","args":{"items":[]},"data":"tick"}`,
		},
		{
			name: "select object",
			stmt: &SelectObject{Action: "EventTarget", SubAction: "", Not: true},
			want: `{"id":"block","block":"select_obj","args":{"items":[]},"action":"EventTarget","subAction":"","inverted":"NOT"}`,
		},
		{
			name: "if variable",
			stmt: &IfVariable{Action: "=", Not: true},
			want: `{"id":"block","block":"if_var","args":{"items":[]},"action":"=","inverted":"NOT"},{"id":"bracket","direct":"open","type":"norm"}`,
		},
		{
			name: "if game",
			stmt: &IfGame{Action: "HasPlayer"},
			want: `{"id":"block","block":"if_game","args":{"items":[]},"action":"HasPlayer","inverted":""},{"id":"bracket","direct":"open","type":"norm"}`,
		},
		{
			name: "if entity",
			stmt: &IfEntity{Action: "IsMob", Target: SelectorLastEntity},
			want: `{"id":"block","block":"if_entity","args":{"items":[]},"action":"IsMob","inverted":"","target":"LastEntity"},{"id":"bracket","direct":"open","type":"norm"}`,
		},
		{
			name: "else",
			stmt: &Else{},
			want: `{"id":"block","block":"else"},{"id":"bracket","direct":"open","type":"norm"}`,
		},
		{
			name: "close",
			stmt: &Close{},
			want: `{"id":"bracket","direct":"close","type":"norm"}`,
		},
		{
			name: "close repeat",
			stmt: &CloseRepeat{},
			want: `{"id":"bracket","direct":"close","type":"repeat"}`,
		},
		{
			name: "repeat",
			stmt: &Repeat{Action: "While", SubAction: "VarIsType"},
			want: `{"id":"block","block":"repeat","args":{"items":[]},"action":"While","subAction":"VarIsType","inverted":""},{"id":"bracket","direct":"open","type":"repeat"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := SerializeStatement(tt.stmt)
			if err != nil {
				t.Fatalf("SerializeStatement: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got  %s\nwant %s", data, tt.want)
			}
		})
	}
}

func TestSerializeValue_Kinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"text", Text{Value: "hi"}, `{"item":{"id":"txt","data":{"name":"hi"}},"slot":3}`},
		{"number", Number{Value: 2.25}, `{"item":{"id":"num","data":{"name":"2.25"}},"slot":3}`},
		{"integral number", Number{Value: 100}, `{"item":{"id":"num","data":{"name":"100"}},"slot":3}`},
		{"location", Location{X: 1, Y: 64, Z: -2.5, Pitch: 0, Yaw: 90},
			`{"item":{"id":"loc","data":{"isBlock":false,"loc":{"x":1,"y":64,"z":-2.5,"pitch":0,"yaw":90}}},"slot":3}`},
		{"vector", Vector{X: 0.1, Y: 0, Z: 1}, `{"item":{"id":"vec","data":{"x":0.1,"y":0,"z":1}},"slot":3}`},
		{"sound", Sound{Name: "Pling", Pitch: 2, Volume: 0.5},
			`{"item":{"id":"snd","data":{"sound":"Pling","pitch":2,"vol":0.5}},"slot":3}`},
		{"potion", Potion{Effect: DolphinGrace, Ticks: 200, Amplifier: 1},
			`{"item":{"id":"pot","data":{"pot":"Dolphin's Grace","dur":200,"amp":1}},"slot":3}`},
		{"local variable", Variable{Name: "x", Scope: ScopeLocal}, `{"item":{"id":"var","data":{"name":"x","scope":"local"}},"slot":3}`},
		{"global variable", Variable{Name: "x", Scope: ScopeGlobal}, `{"item":{"id":"var","data":{"name":"x","scope":"unsaved"}},"slot":3}`},
		{"game value default target", GameValue{Name: "Current Health"},
			`{"item":{"id":"g_val","data":{"type":"Current Health","target":"Default"}},"slot":3}`},
		{"game value with target", GameValue{Name: "Location", Target: SelectorKiller},
			`{"item":{"id":"g_val","data":{"type":"Location","target":"Killer"}},"slot":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := SerializeValue(tt.v, 3, nil)
			if err != nil {
				t.Fatalf("SerializeValue: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got  %s\nwant %s", data, tt.want)
			}
		})
	}
}

func TestSerializeValue_TagContext(t *testing.T) {
	tag := Tag{Name: "Alignment Mode", Option: "Regular"}

	tests := []struct {
		name   string
		ctx    Statement
		action string
		block  string
	}{
		{"player action", &PlayerAction{Action: "SendMessage"}, "SendMessage", "player_action"},
		{"player event", &PlayerEvent{Event: "Join"}, "Join", "event"},
		{"function", &Function{Name: "f"}, "dynamic", "func"},
		{"process", &Process{Name: "p"}, "dynamic", "process"},
		{"call function", &CallFunction{Name: "f"}, "dynamic", "call_func"},
		{"call process", &CallProcess{Name: "p"}, "dynamic", "start_process"},
		{"if variable", &IfVariable{Action: "!="}, "!=", "if_var"},
		{"else", &Else{}, "else", "else"},
		{"close", &Close{}, "bracket", "bracket"},
		{"repeat with sub action", &Repeat{Action: "While", SubAction: "VarIsType"}, "VarIsType", "repeat"},
		{"repeat without sub action", &Repeat{Action: "Forever"}, "Forever", "repeat"},
		{"select object", &SelectObject{Action: "PlayerName"}, "PlayerName", "select_obj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := SerializeValue(tag, 26, tt.ctx)
			if err != nil {
				t.Fatalf("SerializeValue: %v", err)
			}
			want := `{"item":{"id":"bl_tag","data":{"option":"Regular","tag":"Alignment Mode","action":"` +
				tt.action + `","block":"` + tt.block + `"}},"slot":26}`
			if string(data) != want {
				t.Errorf("got  %s\nwant %s", data, want)
			}
		})
	}
}

func TestSerializeValue_TagWithVariable(t *testing.T) {
	tag := Tag{Name: "Mode", Option: "On", Variable: &Variable{Name: "mode", Scope: ScopeGlobal}}
	data, err := SerializeValue(tag, 26, &GameAction{Action: "SetMode"})
	if err != nil {
		t.Fatalf("SerializeValue: %v", err)
	}
	want := `{"item":{"id":"bl_tag","data":{"option":"On","tag":"Mode","action":"SetMode","block":"game_action",` +
		`"variable":{"id":"var","data":{"name":"mode","scope":"unsaved"}}}},"slot":26}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestSerializeValue_TagWithoutContext(t *testing.T) {
	if _, err := SerializeValue(Tag{Name: "x"}, 26, nil); err == nil {
		t.Error("expected error for tag without enclosing statement")
	}
}

func TestSerializeLine_TagInsidePlayerAction(t *testing.T) {
	params := NewParams().
		Param(Text{Value: "hello"}).
		Tag(Tag{Name: "Alignment Mode", Option: "Regular"}).
		MustBuild()
	line := NewCodeLine(&PlayerEvent{Event: "Join"}, &PlayerAction{Action: "SendMessage", Params: params})

	data, err := SerializeLine(line)
	if err != nil {
		t.Fatalf("SerializeLine: %v", err)
	}

	var doc struct {
		Blocks []struct {
			Args struct {
				Items []struct {
					Item struct {
						ID   string         `json:"id"`
						Data map[string]any `json:"data"`
					} `json:"item"`
					Slot int `json:"slot"`
				} `json:"items"`
			} `json:"args"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}
	items := doc.Blocks[1].Args.Items
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	tag := items[1]
	if tag.Slot != 26 || tag.Item.ID != "bl_tag" {
		t.Errorf("tag item = %+v, want bl_tag in slot 26", tag)
	}
	if tag.Item.Data["action"] != "SendMessage" || tag.Item.Data["block"] != "player_action" {
		t.Errorf("tag data = %v, want action SendMessage block player_action", tag.Item.Data)
	}
}

func TestSerializeLine_BracketFragments(t *testing.T) {
	line := NewCodeLine(
		&IfPlayer{Action: "HasPermission", Params: NewParams().Tag(Tag{Name: "Permission", Option: "Developer"}).MustBuild()},
		&PlayerAction{Action: "SendMessage"},
		&Close{},
	)
	data, err := SerializeLine(line)
	if err != nil {
		t.Fatalf("SerializeLine: %v", err)
	}

	var doc struct {
		Blocks []struct {
			ID     string `json:"id"`
			Block  string `json:"block"`
			Direct string `json:"direct"`
			Type   string `json:"type"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}
	if len(doc.Blocks) != 4 {
		t.Fatalf("fragments = %d, want 4\n%s", len(doc.Blocks), data)
	}
	want := []string{"block:if_player", "bracket:open:norm", "block:player_action", "bracket:close:norm"}
	for i, b := range doc.Blocks {
		var got string
		if b.ID == "block" {
			got = "block:" + b.Block
		} else {
			got = "bracket:" + b.Direct + ":" + b.Type
		}
		if got != want[i] {
			t.Errorf("fragment %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestSerializeLine_ValidJSON(t *testing.T) {
	line := NewCodeLine(
		&PlayerEvent{Event: "Join"},
		&Repeat{Action: "Multiple", Params: NewParams().Param(Number{Value: 3}).MustBuild()},
		&SetVariable{Action: "+=", Params: NewParams().Param(Variable{Name: `quo"ted`}).MustBuild()},
		&CloseRepeat{},
		&IfGame{Action: "HasPlayer"},
		&Close{},
		&Else{},
		&GameAction{Action: "CancelEvent"},
		&Close{},
	)
	data, err := SerializeLine(line)
	if err != nil {
		t.Fatalf("SerializeLine: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("invalid JSON: %s", data)
	}
}

func TestSerializeLine_UnsupportedValue(t *testing.T) {
	var params Params
	params[0] = Particle{Particle: "Cloud"}
	line := NewCodeLine(&PlayerAction{Action: "Particle", Params: params})

	data, err := SerializeLine(line)
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("err = %v, want ErrUnsupportedValue", err)
	}
	if data != nil {
		t.Errorf("partial output returned: %s", data)
	}
}

func TestSerializeLine_PointerValue(t *testing.T) {
	var params Params
	params[0] = &Text{Value: "hi"}
	line := NewCodeLine(&PlayerAction{Action: "SendMessage", Params: params})

	_, err := SerializeLine(line)
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("err = %v, want ErrUnsupportedValue", err)
	}
	if !strings.Contains(err.Error(), "*compiler.Text") {
		t.Errorf("err = %v, want the pointer type named", err)
	}
}
