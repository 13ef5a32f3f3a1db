package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go-cubirds/engine"

	lua "github.com/yuin/gopher-lua"
)

const luaEntryPoint = "suggest"

// LuaOracle runs a strategy script. The script must define a global
// function suggest(view) returning {species=, row=, side=} or nil. Rows are
// zero-based like everywhere else on the wire.
//
// The view table carries seat, phase, hand (list of species names), rows
// (list of lists), collection and opponent (maps of name to count).
type LuaOracle struct {
	mu sync.Mutex
	L  *lua.LState
}

// NewLuaOracle loads the script at path.
func NewLuaOracle(path string) (*LuaOracle, error) {
	return newLuaOracle(func(L *lua.LState) error { return L.DoFile(path) })
}

// NewLuaOracleFromSource loads a script held in memory.
func NewLuaOracleFromSource(src string) (*LuaOracle, error) {
	return newLuaOracle(func(L *lua.LState) error { return L.DoString(src) })
}

func newLuaOracle(load func(*lua.LState) error) (*LuaOracle, error) {
	L := lua.NewState()
	if err := load(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("load strategy script: %w", err)
	}
	if fn := L.GetGlobal(luaEntryPoint); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("strategy script does not define %s(view)", luaEntryPoint)
	}
	return &LuaOracle{L: L}, nil
}

func (o *LuaOracle) Suggest(ctx context.Context, _ string, view engine.View) (*engine.PlayMove, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.L.SetContext(ctx)
	defer o.L.RemoveContext()

	err := o.L.CallByParam(lua.P{
		Fn:      o.L.GetGlobal(luaEntryPoint),
		NRet:    1,
		Protect: true,
	}, viewTable(o.L, view))
	if err != nil {
		return nil, fmt.Errorf("run strategy script: %w", err)
	}
	ret := o.L.Get(-1)
	o.L.Pop(1)

	if ret == lua.LNil {
		return nil, ErrNoSuggestion
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("strategy script returned %s, want table", ret.Type())
	}
	s, err := decodeSuggestion(tbl)
	if err != nil {
		return nil, err
	}
	return s.move(), nil
}

func (o *LuaOracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.L.Close()
	return nil
}

func decodeSuggestion(tbl *lua.LTable) (suggestion, error) {
	name, ok := tbl.RawGetString("species").(lua.LString)
	if !ok {
		return suggestion{}, errors.New("strategy result has no species")
	}
	species, err := engine.ParseSpecies(string(name))
	if err != nil {
		return suggestion{}, err
	}
	row, ok := tbl.RawGetString("row").(lua.LNumber)
	if !ok {
		return suggestion{}, errors.New("strategy result has no row")
	}
	side, _ := tbl.RawGetString("side").(lua.LString)
	return suggestion{
		Species: species,
		Row:     int(row),
		Side:    engine.Side(strings.ToUpper(string(side))),
	}, nil
}

func viewTable(L *lua.LState, v engine.View) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("seat", lua.LNumber(v.Seat))
	t.RawSetString("phase", lua.LString(v.Phase))
	t.RawSetString("hand", cardList(L, v.Hand))
	t.RawSetString("collection", countTable(L, v.Collection))
	t.RawSetString("opponent", countTable(L, v.OpponentCollection))

	rows := L.NewTable()
	for _, row := range v.Rows {
		rows.Append(cardList(L, row))
	}
	t.RawSetString("rows", rows)
	return t
}

func cardList(L *lua.LState, cards []engine.Species) *lua.LTable {
	t := L.NewTable()
	for _, c := range cards {
		t.Append(lua.LString(c.String()))
	}
	return t
}

func countTable(L *lua.LState, c engine.Counts) *lua.LTable {
	t := L.NewTable()
	for _, s := range engine.AllSpecies() {
		t.RawSetString(s.String(), lua.LNumber(c[s]))
	}
	return t
}
