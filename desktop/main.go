package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	headerHeight  = 80 // Taller header for multi-session stats
	footerHeight  = 30
	screenWidth   = 800
	screenHeight  = 720
	maxSessions   = 9
	stepTrailSize = 40                     // Recent expansions highlighted during a traced run
	stepFade      = 800 * time.Millisecond // How long a highlighted expansion stays visible
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGrid
)

// Brush is the cell action applied with a left click
type Brush string

const (
	BrushWall   Brush = "wall"
	BrushEmpty  Brush = "empty"
	BrushSource Brush = "source"
	BrushTarget Brush = "target"
)

// Session colors in the header
var sessionColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// stepMark is an expansion received over the WebSocket
type stepMark struct {
	pos  Position
	seen time.Time
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	grid       *GridSnapshot
	wsConn     *websocket.Conn
	lastUpdate time.Time
	steps      []stepMark  // latest expansions of a traced run
	lastRun    *RunSummary // result of the latest completed run
}

// Viewer is the desktop client for one or more pathfinder sessions
type Viewer struct {
	api              *APIClient
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to view
	brush            Brush
	statusMsg        string
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // selected config for new session
}

// NewViewer creates a viewer with the given sessions, or the welcome screen when none are given
func NewViewer(api *APIClient, sessionIDs []string) *Viewer {
	v := &Viewer{
		api:              api,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen:    &WelcomeScreen{},
		brush:            BrushWall,
	}

	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			v.addSession(sid)
		}
		v.currentScreen = ScreenGrid
	} else {
		v.loadWelcomeData()
	}

	return v
}

// addSession adds a session, creating one with the first session's config if the ID is empty
func (v *Viewer) addSession(sessionID string) {
	if sessionID == "" {
		id, err := v.api.CreateSession(v.welcomeScreen.newSessionConfig)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		sessionID = id
	}

	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}
	v.sessions = append(v.sessions, session)

	conn, err := v.api.Dial(sessionID)
	if err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", sessionID, err)
	} else {
		session.wsConn = conn
		log.Printf("WebSocket connected for session %s", sessionID)
		go v.listenWebSocket(session)
	}

	v.fetchGrid(session)
}

// listenWebSocket applies grid updates and search events as they arrive
func (v *Viewer) listenWebSocket(session *SessionData) {
	defer session.wsConn.Close()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			v.stateMutex.Lock()
			session.wsConn = nil
			v.stateMutex.Unlock()
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		v.stateMutex.Lock()
		v.applyMessage(session, &msg)
		v.stateMutex.Unlock()
	}
}

// applyMessage folds one WebSocket message into the session. Callers hold stateMutex.
func (v *Viewer) applyMessage(session *SessionData, msg *WSMessage) {
	switch msg.Event {
	case "search_step":
		var step StepEvent
		if err := json.Unmarshal(msg.Data, &step); err != nil {
			return
		}
		session.steps = append(session.steps, stepMark{pos: step.Position, seen: time.Now()})
		if len(session.steps) > stepTrailSize {
			session.steps = session.steps[len(session.steps)-stepTrailSize:]
		}
	case "search_complete":
		var summary RunSummary
		if err := json.Unmarshal(msg.Data, &summary); err == nil {
			session.lastRun = &summary
		}
	default:
		if msg.Grid != nil {
			session.grid = msg.Grid
			session.lastUpdate = time.Now()
		}
	}
}

// fetchGrid gets the current grid from the server
func (v *Viewer) fetchGrid(session *SessionData) error {
	grid, err := v.api.GetGrid(session.sessionID)
	if err != nil {
		return err
	}

	v.stateMutex.Lock()
	session.grid = grid
	session.lastUpdate = time.Now()
	v.stateMutex.Unlock()
	return nil
}

// loadWelcomeData fetches available sessions and configs from server
func (v *Viewer) loadWelcomeData() {
	ws := v.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	sessions, err := v.api.ListSessions()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessions

	configs, err := v.api.ListConfigs()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	ws.availableConfigs = configs
}

// createNewSessionFromWelcome creates a new session with selected config
func (v *Viewer) createNewSessionFromWelcome() error {
	id, err := v.api.CreateSession(v.welcomeScreen.newSessionConfig)
	if err != nil {
		return err
	}

	v.selectedSessions[id] = true
	v.loadWelcomeData()
	return nil
}

// startWithSelectedSessions transitions to the grid screen with selected sessions
func (v *Viewer) startWithSelectedSessions() {
	if len(v.selectedSessions) == 0 {
		v.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range v.selectedSessions {
		v.addSession(sessionID)
	}
	v.selectedSessions = make(map[string]bool)
	v.currentScreen = ScreenGrid
}

func (v *Viewer) active() *SessionData {
	if len(v.sessions) == 0 {
		return nil
	}
	return v.sessions[v.activeSession]
}

// cellSize fits the grid into the area between header and footer
func cellSize(grid *GridSnapshot) int {
	if grid == nil || grid.Width == 0 || grid.Height == 0 {
		return 1
	}
	size := screenWidth / grid.Width
	if h := (screenHeight - headerHeight - footerHeight) / grid.Height; h < size {
		size = h
	}
	if size < 2 {
		size = 2
	}
	return size
}

// cellAtCursor maps the mouse position to a grid cell
func (v *Viewer) cellAtCursor(grid *GridSnapshot) (Position, bool) {
	mx, my := ebiten.CursorPosition()
	size := cellSize(grid)
	if my < headerHeight {
		return Position{}, false
	}
	p := Position{X: mx / size, Y: (my - headerHeight) / size}
	if p.X < 0 || p.X >= grid.Width || p.Y < 0 || p.Y >= grid.Height {
		return Position{}, false
	}
	return p, true
}

// sendAction runs one REST action against the active session and refreshes it
func (v *Viewer) sendAction(action func(id string) error) {
	session := v.active()
	if session == nil {
		return
	}

	if err := action(session.sessionID); err != nil {
		v.statusMsg = err.Error()
		return
	}
	v.statusMsg = ""

	// Without a WebSocket nothing pushes the new grid
	if session.wsConn == nil {
		if err := v.fetchGrid(session); err != nil {
			log.Printf("Error fetching grid for %s: %v", session.sessionID, err)
		}
	}
}

// Update updates viewer logic
func (v *Viewer) Update() error {
	switch v.currentScreen {
	case ScreenWelcome:
		return v.updateWelcomeScreen()
	case ScreenGrid:
		return v.updateGridScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (v *Viewer) updateWelcomeScreen() error {
	ws := v.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		v.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < totalItems-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && ws.cursorPos < totalItems {
		sessionID := ws.availableSessions[ws.cursorPos].ID
		if v.selectedSessions[sessionID] {
			delete(v.selectedSessions, sessionID)
		} else {
			v.selectedSessions[sessionID] = true
		}
	}

	// Cycle through configs with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		currentIdx := -1
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				currentIdx = i
				break
			}
		}
		currentIdx++
		if currentIdx >= len(ws.availableConfigs) {
			ws.newSessionConfig = "" // server default
		} else {
			ws.newSessionConfig = ws.availableConfigs[currentIdx].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := v.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.startWithSelectedSessions()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(v.sessions) > 0 {
		v.currentScreen = ScreenGrid
	}

	return nil
}

// updateGridScreen handles grid screen input
func (v *Viewer) updateGridScreen() error {
	if len(v.sessions) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			v.currentScreen = ScreenWelcome
			v.loadWelcomeData()
		}
		return nil
	}

	// Poll sessions without a WebSocket
	for _, session := range v.sessions {
		if session.wsConn == nil && time.Since(session.lastUpdate) > 500*time.Millisecond {
			if err := v.fetchGrid(session); err != nil {
				log.Printf("Error fetching grid for %s: %v", session.sessionID, err)
			}
		}
	}

	// Session switching with number keys (1-9)
	for k := ebiten.Key1; k <= ebiten.Key9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			if idx := int(k - ebiten.Key1); idx < len(v.sessions) {
				v.activeSession = idx
				log.Printf("Switched to session %d: %s", idx+1, v.sessions[idx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(v.sessions) < maxSessions {
		v.addSession("")
		log.Printf("Added new session (total: %d)", len(v.sessions))
	}

	// Brush selection
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		v.brush = BrushWall
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		v.brush = BrushEmpty
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.brush = BrushSource
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		v.brush = BrushTarget
	}

	session := v.active()
	v.stateMutex.RLock()
	grid := session.grid
	v.stateMutex.RUnlock()

	if grid != nil && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if p, ok := v.cellAtCursor(grid); ok {
			brush := string(v.brush)
			v.sendAction(func(id string) error { return v.api.EditCell(id, brush, p) })
		}
	}
	if grid != nil && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if p, ok := v.cellAtCursor(grid); ok {
			v.sendAction(func(id string) error { return v.api.EditCell(id, string(BrushEmpty), p) })
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.stateMutex.Lock()
		session.steps = nil
		v.stateMutex.Unlock()
		v.sendAction(func(id string) error {
			summary, err := v.api.Run(id)
			if err == nil {
				v.stateMutex.Lock()
				session.lastRun = summary
				v.stateMutex.Unlock()
			}
			return err
		})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.sendAction(v.api.Clear)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		v.sendAction(v.api.Reset)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		v.currentScreen = ScreenWelcome
		v.loadWelcomeData()
	}

	return nil
}

// Draw renders the viewer
func (v *Viewer) Draw(screen *ebiten.Image) {
	switch v.currentScreen {
	case ScreenWelcome:
		v.drawWelcomeScreen(screen)
	case ScreenGrid:
		v.drawGridScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (v *Viewer) drawWelcomeScreen(screen *ebiten.Image) {
	ws := v.welcomeScreen

	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== GRID PATHFINDER - SESSION SELECT ===", 200, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, session := range ws.availableSessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}

		checkbox := "[ ]"
		if v.selectedSessions[session.ID] {
			checkbox = "[X]"
		}

		size := ""
		if session.Grid != nil {
			size = fmt.Sprintf("%dx%d", session.Grid.Width, session.Grid.Height)
		}

		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s%s %s | %s | %s", cursor, checkbox, session.ID, session.ConfigName, size), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Template: %s", configDisplay), 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.ConfigID, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(v.selectedSessions)), 20, y)
	y += 30

	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	for _, line := range []string{
		"  ↑/↓      - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle template for new session",
		"  N        - Create new session with selected template",
		"  ENTER    - Open selected sessions",
		"  F5       - Refresh session list",
	} {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
	if len(v.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to grid", 20, y)
	}
}

// drawGridScreen renders the active session's grid
func (v *Viewer) drawGridScreen(screen *ebiten.Image) {
	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	session := v.active()
	if session == nil {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}
	if session.grid == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	v.drawSessionStats(screen)

	grid := session.grid
	size := cellSize(grid)
	for y, row := range grid.Cells {
		for x, cell := range row {
			ebitenutil.DrawRect(screen,
				float64(x*size),
				float64(y*size+headerHeight),
				float64(size-1), float64(size-1), getCellColor(cell.State))
		}
	}

	// Highlight the latest expansions of a traced run, newest brightest
	now := time.Now()
	for _, mark := range session.steps {
		age := now.Sub(mark.seen)
		if age > stepFade {
			continue
		}
		alpha := uint8(200 * (1 - float64(age)/float64(stepFade)))
		ebitenutil.DrawRect(screen,
			float64(mark.pos.X*size),
			float64(mark.pos.Y*size+headerHeight),
			float64(size-1), float64(size-1), color.RGBA{255, 255, 255, alpha})
	}

	if p, ok := v.cellAtCursor(grid); ok {
		info := fmt.Sprintf("(%d,%d) %s", p.X, p.Y, grid.Cells[p.Y][p.X].State)
		if n := grid.Cells[p.Y][p.X].Node; n != nil {
			info += fmt.Sprintf(" g=%d h=%d f=%d", n.GCost, n.HCost, n.FCost)
		}
		ebitenutil.DebugPrintAt(screen, info, 10, screenHeight-35)
	}
	if v.statusMsg != "" {
		ebitenutil.DebugPrintAt(screen, v.statusMsg, 400, screenHeight-35)
	}

	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("Brush: %s (W/E/S/T) | Click: paint | Right-click: erase | R: Run | C: Clear | X: Reset | 1-9 | N | ESC", v.brush),
		10, screenHeight-20)
}

// drawSessionStats draws stats for all sessions in header
func (v *Viewer) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range v.sessions {
		y := headerY + idx*15
		if y > headerHeight-15 {
			break
		}

		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, sessionColors[idx%len(sessionColors)])

		activeMarker := ""
		if idx == v.activeSession {
			activeMarker = ">>>"
		}

		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s]", activeMarker, idx+1, session.sessionID, connStatus)
		if session.grid != nil {
			info += fmt.Sprintf(" %dx%d", session.grid.Width, session.grid.Height)
		}
		if r := session.lastRun; r != nil {
			if r.Found {
				info += fmt.Sprintf(" PATH cost:%d expanded:%d", r.Cost, r.Expanded)
			} else {
				info += fmt.Sprintf(" NO PATH expanded:%d", r.Expanded)
			}
		}

		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the viewer screen size
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// getCellColor returns the color for each cell state
func getCellColor(state string) color.Color {
	switch state {
	case "empty":
		return color.RGBA{60, 60, 60, 255} // Dark gray for empty
	case "wall":
		return color.RGBA{20, 20, 20, 255} // Near black for walls
	case "source":
		return color.RGBA{0, 200, 0, 255} // Green for source
	case "target":
		return color.RGBA{220, 0, 0, 255} // Red for target
	case "path":
		return color.RGBA{255, 215, 0, 255} // Gold for path
	case "open":
		return color.RGBA{0, 160, 200, 255} // Cyan for open
	case "closed":
		return color.RGBA{40, 70, 160, 255} // Blue for closed
	default:
		return color.RGBA{50, 50, 50, 255}
	}
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Pathfinder server URL")
	flag.Parse()

	// Remaining arguments are session IDs to open directly
	viewer := NewViewer(NewAPIClient(*serverURL), flag.Args())

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Grid Pathfinder - Desktop Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
