package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/pathing"
)

// ANSI color codes for Board rendering
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorGray   = "\033[90m"
)

var playerColors = [core.MaxPlayers]string{ColorRed, ColorBlue, ColorGreen, ColorYellow}

const (
	emptySymbol      = "·"
	horizontalSymbol = "━━"
	verticalSymbol   = "┃"
)

// Board returns a text rendering of the board. Pawns show their slot
// number, walls are drawn between the cells they separate.
func (e *Engine) Board() string {
	s := e.state
	grid := pathing.NewGrid(s.Walls)

	pawns := make(map[core.Position]core.PlayerSlot, len(s.Order))
	for _, slot := range s.ActivePlayers() {
		pawns[s.Players[slot.Index()].Position] = slot
	}

	var sb strings.Builder
	sb.Grow((core.BoardSize*2 + 2) * (core.BoardSize*3 + 16))

	sb.WriteString("   ")
	for c := 0; c < core.BoardSize; c++ {
		fmt.Fprintf(&sb, "%2d ", c)
	}
	sb.WriteString("\n")

	for r := 0; r < core.BoardSize; r++ {
		fmt.Fprintf(&sb, "%2d ", r)
		for c := 0; c < core.BoardSize; c++ {
			pos := core.Position{Row: r, Col: c}
			if slot, ok := pawns[pos]; ok {
				sb.WriteString(" ")
				sb.WriteString(playerColors[slot.Index()])
				fmt.Fprintf(&sb, "%d", int(slot))
				sb.WriteString(ColorReset)
			} else {
				sb.WriteString(ColorGray)
				sb.WriteString(" " + emptySymbol)
				sb.WriteString(ColorReset)
			}
			if c < core.BoardSize-1 && grid.Blocked(pos, pos.Move(core.Right)) {
				sb.WriteString(verticalSymbol)
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")

		if r == core.BoardSize-1 {
			break
		}
		sb.WriteString("   ")
		for c := 0; c < core.BoardSize; c++ {
			pos := core.Position{Row: r, Col: c}
			if grid.Blocked(pos, pos.Move(core.Down)) {
				sb.WriteString(horizontalSymbol)
			} else {
				sb.WriteString("  ")
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		fmt.Fprintf(&sb, "%s%d%s=%s walls:%d", playerColors[slot.Index()], int(slot), ColorReset, slot, p.WallsRemaining)
		if !p.Active {
			sb.WriteString(" (out)")
		}
		sb.WriteString("  ")
	}
	sb.WriteString("\n")
	return sb.String()
}
