//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
)

// handle is one Beatmap exposed to JavaScript together with the callbacks
// bound to its object. free() releases both.
type handle struct {
	bm    *osubridge.Beatmap
	funcs []js.Func
}

// registry owns every live handle. The wasm runtime is single threaded, so
// no locking is needed.
type registry struct {
	next int
	live map[int]*handle
}

var handles = &registry{live: make(map[int]*handle)}

func (r *registry) get(id int) (*osubridge.Beatmap, error) {
	h, ok := r.live[id]
	if !ok {
		return nil, osubridge.ErrReleased
	}
	return h.bm, nil
}

func (r *registry) release(id int) bool {
	h, ok := r.live[id]
	if !ok {
		return false
	}
	delete(r.live, id)
	for _, f := range h.funcs {
		f.Release()
	}
	return true
}

// add registers bm and builds the object handed to JavaScript.
func (r *registry) add(bm *osubridge.Beatmap) js.Value {
	r.next++
	id := r.next
	h := &handle{bm: bm}
	r.live[id] = h

	fn := func(f func(this js.Value, args []js.Value) interface{}) js.Func {
		jf := js.FuncOf(f)
		h.funcs = append(h.funcs, jf)
		return jf
	}

	obj := js.Global().Get("Object").New()
	obj.Set("id", id)

	// Returns: {error: number, data: object | string}
	obj.Set("asJson", fn(func(this js.Value, args []js.Value) interface{} {
		b, err := r.get(id)
		if err != nil {
			return makeResponse(osubridge.Fail(err))
		}
		m, err := b.AsJSON()
		if err != nil {
			return makeResponse(osubridge.Fail(err))
		}
		return makeResponse(osubridge.OK(m))
	}))

	// Returns: {error: number, data: string}
	obj.Set("get", fn(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 || args[0].Type() != js.TypeString {
			return makeErrorResponse(osubridge.ErrorInvalidArgs, "Expected 1 argument: field name")
		}
		b, err := r.get(id)
		if err != nil {
			return makeResponse(osubridge.Fail(err))
		}
		v, err := b.Field(args[0].String())
		if err != nil {
			return makeResponse(osubridge.Fail(err))
		}
		return makeResponse(osubridge.OK(v))
	}))

	// Returns: {error: number, data: null | string}
	obj.Set("set", fn(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 2 || args[0].Type() != js.TypeString {
			return makeErrorResponse(osubridge.ErrorInvalidArgs, "Expected 2 arguments: field name, value")
		}
		b, err := r.get(id)
		if err != nil {
			return makeResponse(osubridge.Fail(err))
		}
		if err := b.SetFieldValue(args[0].String(), fromJS(args[1])); err != nil {
			return makeResponse(osubridge.Fail(err))
		}
		return makeResponse(osubridge.OK(nil))
	}))

	obj.Set("toString", fn(func(this js.Value, args []js.Value) interface{} {
		b, err := r.get(id)
		if err != nil {
			return "[released Beatmap]"
		}
		text, err := b.Text()
		if err != nil {
			logf("error", "Beatmap.toString: %v", err)
		}
		return text
	}))

	// Returns true the first time, false for an already released handle.
	obj.Set("free", fn(func(this js.Value, args []js.Value) interface{} {
		return r.release(id)
	}))

	for _, name := range osubridge.FieldNames() {
		defineField(obj, name, id, r, fn)
	}
	return obj
}

// defineField installs a get/set accessor for name. Reads after free() give
// undefined; rejected writes are reported on the console and leave the value
// unchanged.
func defineField(obj js.Value, name string, id int, r *registry, fn func(func(js.Value, []js.Value) interface{}) js.Func) {
	getter := fn(func(this js.Value, args []js.Value) interface{} {
		b, err := r.get(id)
		if err != nil {
			return js.Undefined()
		}
		switch name {
		case osubridge.FieldVersion:
			return b.Version()
		case osubridge.FieldAudioLeadIn:
			return b.AudioLeadIn()
		default:
			v, _ := b.Field(name)
			return v
		}
	})
	setter := fn(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			return nil
		}
		b, err := r.get(id)
		if err == nil {
			err = b.SetFieldValue(name, fromJS(args[0]))
		}
		if err != nil {
			logf("error", "Beatmap.%s: %v", name, err)
		}
		return nil
	})

	desc := js.Global().Get("Object").New()
	desc.Set("get", getter)
	desc.Set("set", setter)
	desc.Set("enumerable", true)
	js.Global().Get("Object").Call("defineProperty", obj, name, desc)
}

func fromJS(v js.Value) any {
	switch v.Type() {
	case js.TypeNumber:
		return v.Float()
	case js.TypeString:
		return v.String()
	case js.TypeBoolean:
		return v.Bool()
	default:
		return nil
	}
}
