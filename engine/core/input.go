package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions, the virtual-key values of the original platform layer.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_PAUSE     KeyCode = 0x13
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_0         KeyCode = 0x30
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_Z         KeyCode = 0x5A

	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Mouse state structure
type MouseState struct {
	X       uint16
	Y       uint16
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

var inputState *InputState

// InputInitialize resets the input state. Platform layers feed it with the InputProcess* calls.
func InputInitialize() error {
	inputState = &InputState{}
	LogDebug("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputState = nil
	return nil
}

// InputUpdate copies the current states to the previous ones; call once per frame.
func InputUpdate(deltaTime float64) error {
	if inputState == nil {
		return nil
	}
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	inputState.MousePrevious = inputState.MouseCurrent
	return nil
}

// keyboard input
func InputIsKeyDown(key KeyCode) bool {
	return inputState != nil && key < KEYS_MAX_KEYS && inputState.KeyboardCurrent.Keys[key]
}

func InputWasKeyDown(key KeyCode) bool {
	return inputState != nil && key < KEYS_MAX_KEYS && inputState.KeyboardPrevious.Keys[key]
}

// InputKeyJustPressed is true in the frame a key went down.
func InputKeyJustPressed(key KeyCode) bool {
	return InputIsKeyDown(key) && !InputWasKeyDown(key)
}

/**
 * @brief Records a key state change and fires EVENT_CODE_KEY_PRESSED or
 * EVENT_CODE_KEY_RELEASED. Repeated reports of the same state are ignored.
 */
func InputProcessKey(key KeyCode, pressed bool) {
	if inputState == nil || key >= KEYS_MAX_KEYS {
		return
	}
	if inputState.KeyboardCurrent.Keys[key] == pressed {
		return
	}
	inputState.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	var ctx EventContext
	ctx.Data.U16[0] = uint16(key)
	EventFire(code, nil, ctx)
}

// mouse input
func InputIsButtonDown(button Button) bool {
	return inputState != nil && button < BUTTON_MAX_BUTTONS && inputState.MouseCurrent.Buttons[button]
}

func InputWasButtonDown(button Button) bool {
	return inputState != nil && button < BUTTON_MAX_BUTTONS && inputState.MousePrevious.Buttons[button]
}

func InputGetMousePosition() (int32, int32) {
	if inputState == nil {
		return 0, 0
	}
	return int32(inputState.MouseCurrent.X), int32(inputState.MouseCurrent.Y)
}

func InputProcessButton(button Button, pressed bool) {
	if inputState == nil || button >= BUTTON_MAX_BUTTONS {
		return
	}
	if inputState.MouseCurrent.Buttons[button] == pressed {
		return
	}
	inputState.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	var ctx EventContext
	ctx.Data.U16[0] = uint16(button)
	EventFire(code, nil, ctx)
}

func InputProcessMouseMove(x, y uint16) {
	if inputState == nil {
		return
	}
	if inputState.MouseCurrent.X == x && inputState.MouseCurrent.Y == y {
		return
	}
	inputState.MouseCurrent.X = x
	inputState.MouseCurrent.Y = y

	var ctx EventContext
	ctx.Data.U16[0] = x
	ctx.Data.U16[1] = y
	EventFire(EVENT_CODE_MOUSE_MOVED, nil, ctx)
}

func InputProcessMouseWheel(zDelta int32) {
	if zDelta == 0 {
		return
	}
	var ctx EventContext
	ctx.Data.I32[0] = zDelta
	EventFire(EVENT_CODE_MOUSE_WHEEL, nil, ctx)
}
