package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Left, Right key.Binding

	AddNode   key.Binding
	AddEdge   key.Binding
	Grab      key.Binding
	Undo      key.Binding
	Clear     key.Binding
	Randomize key.Binding

	Dijkstra    key.Binding
	BellmanFord key.Binding
	Step        key.Binding
	Autoplay    key.Binding
	Exit        key.Binding

	Save key.Binding
	Open key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),

		AddNode:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add node")),
		AddEdge:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "add edge")),
		Grab:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab/drop node")),
		Undo:      key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Randomize: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "random graph")),

		Dijkstra:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dijkstra")),
		BellmanFord: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bellman-ford")),
		Step:        key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s/space", "step")),
		Autoplay:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "autoplay")),
		Exit:        key.NewBinding(key.WithKeys("x", "esc"), key.WithHelp("x/esc", "exit playback")),

		Save: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save scenario")),
		Open: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open scenario")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddNode, k.AddEdge, k.Undo, k.Dijkstra, k.BellmanFord, k.Step, k.Exit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.AddNode, k.AddEdge, k.Grab, k.Undo, k.Clear, k.Randomize},
		{k.Dijkstra, k.BellmanFord, k.Step, k.Autoplay, k.Exit},
		{k.Save, k.Open, k.Help, k.Quit},
	}
}
