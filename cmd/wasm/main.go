//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
)

// Parses .osu text and returns a handle object.
// Returns: {error: number, data: Beatmap | string}
func parseBeatmap(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeErrorResponse(osubridge.ErrorInvalidArgs, "Expected 1 argument: text")
	}
	if args[0].Type() != js.TypeString {
		return makeErrorResponse(osubridge.ErrorInvalidArgs, "text must be a string")
	}

	bm, err := osubridge.Parse(args[0].String())
	if err != nil {
		return makeResponse(osubridge.Fail(err))
	}
	return makeResponse(osubridge.OK(handles.add(bm)))
}

// Reads and parses a file through the host's filesystem (Node only).
// Returns: {error: number, data: Beatmap | string}
func parseBeatmapFile(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeErrorResponse(osubridge.ErrorInvalidArgs, "Expected 1 argument: path")
	}
	if args[0].Type() != js.TypeString {
		return makeErrorResponse(osubridge.ErrorInvalidArgs, "path must be a string")
	}

	bm, err := osubridge.ParseFile(args[0].String())
	if err != nil {
		return makeResponse(osubridge.Fail(err))
	}
	return makeResponse(osubridge.OK(handles.add(bm)))
}

// Returns: {error: 0, data: Beatmap}
func createBeatmap(this js.Value, args []js.Value) interface{} {
	return makeResponse(osubridge.OK(handles.add(osubridge.New())))
}

func makeResponse(env osubridge.Envelope) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", env.Error)
	result.Set("data", js.ValueOf(env.Data))
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func logf(method, format string, args ...any) {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call(method, fmt.Sprintf(format, args...))
	}
}

func main() {
	logf("log", "OsuBridge WASM module initializing...")

	done := make(chan struct{})

	api := js.Global().Get("Object").New()
	api.Set("parse", js.FuncOf(parseBeatmap))
	api.Set("parseFromFile", js.FuncOf(parseBeatmapFile))
	api.Set("create", js.FuncOf(createBeatmap))
	api.Set("fields", js.ValueOf(toAnySlice(osubridge.FieldNames())))
	js.Global().Set("Beatmap", api)

	logf("log", "Beatmap.parse, Beatmap.parseFromFile and Beatmap.create registered")

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
		logf("log", "wasmReady event dispatched")
	}

	logf("log", "OsuBridge WASM module loaded and ready")

	<-done
}

func toAnySlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
