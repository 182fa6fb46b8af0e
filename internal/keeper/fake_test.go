package keeper

import (
	"errors"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

var (
	errFakeClosed   = errors.New("fake display closed")
	errPropTooLarge = errors.New("request too large")
)

const (
	selfWin   xproto.Window = 0x400001
	peerWin   xproto.Window = 0x600001
	otherWin  xproto.Window = 0x800001
	clientWin xproto.Window = 0xa00001
)

type propKey struct {
	win  xproto.Window
	atom xproto.Atom
}

type fakeProp struct {
	typ    xproto.Atom
	format byte
	data   []byte
}

type queued struct {
	ev  xgb.Event
	err error
}

type convertCall struct {
	requestor xproto.Window
	owner     xproto.Window
	target    xproto.Atom
	prop      xproto.Atom
	time      xproto.Timestamp
}

type claimCall struct {
	owner xproto.Window
	time  xproto.Timestamp
}

// fakePeer answers conversions the way an X client owning the clipboard
// would. With chunks set it uses the INCR protocol; the final entry should
// be empty.
type fakePeer struct {
	win     xproto.Window
	text    []byte
	chunks  [][]byte
	decline bool
	silent  bool
}

type incrState struct {
	peer *fakePeer
	key  propKey
	next int
}

// fakeDisplay is an in-memory X server holding one selection.
type fakeDisplay struct {
	win    xproto.Window
	atoms  map[string]xproto.Atom
	owner  xproto.Window
	xfixes bool

	props map[propKey]fakeProp
	peers map[xproto.Window]*fakePeer
	queue []queued
	incr  *incrState

	converts []convertCall
	claims   []claimCall
	sent     []xproto.SelectionNotifyEvent
	deleted  []propKey

	claimErr    error
	convertErr  error
	claimIgnore bool
	changeErr   error
	// maxProp, when set, refuses property writes larger than this.
	maxProp int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		win:   selfWin,
		atoms: make(map[string]xproto.Atom),
		props: make(map[propKey]fakeProp),
		peers: make(map[xproto.Window]*fakePeer),
	}
}

func (f *fakeDisplay) atom(name string) xproto.Atom {
	a, _ := f.InternAtom(name)
	return a
}

func (f *fakeDisplay) InternAtom(name string) (xproto.Atom, error) {
	if a, ok := f.atoms[name]; ok {
		return a, nil
	}
	a := xproto.Atom(100 + len(f.atoms))
	f.atoms[name] = a
	return a, nil
}

func (f *fakeDisplay) Window() xproto.Window { return f.win }

func (f *fakeDisplay) SelectionOwner(xproto.Atom) (xproto.Window, error) {
	return f.owner, nil
}

func (f *fakeDisplay) SetSelectionOwner(owner xproto.Window, sel xproto.Atom, t xproto.Timestamp) error {
	f.claims = append(f.claims, claimCall{owner: owner, time: t})
	if f.claimErr != nil {
		return f.claimErr
	}
	if f.claimIgnore {
		return nil
	}
	f.setOwner(owner, sel, t)
	return nil
}

func (f *fakeDisplay) ConvertSelection(requestor xproto.Window, sel, target, prop xproto.Atom, t xproto.Timestamp) error {
	f.converts = append(f.converts, convertCall{requestor: requestor, owner: f.owner, target: target, prop: prop, time: t})
	if f.convertErr != nil {
		return f.convertErr
	}
	p, ok := f.peers[f.owner]
	if !ok || p.silent {
		return nil
	}
	key := propKey{requestor, prop}
	notify := xproto.SelectionNotifyEvent{Time: t, Requestor: requestor, Selection: sel, Target: target, Property: prop}
	switch {
	case p.decline:
		notify.Property = xproto.AtomNone
	case p.chunks != nil:
		total := 0
		for _, c := range p.chunks {
			total += len(c)
		}
		hint := make([]byte, 4)
		xgb.Put32(hint, uint32(total))
		f.write(key, fakeProp{typ: f.atom(NameIncr), format: 32, data: hint})
		f.incr = &incrState{peer: p, key: key}
	default:
		f.write(key, fakeProp{typ: target, format: 8, data: p.text})
	}
	f.push(notify)
	return nil
}

func (f *fakeDisplay) GetProperty(w xproto.Window, prop xproto.Atom, del bool) (*xproto.GetPropertyReply, error) {
	key := propKey{w, prop}
	p, ok := f.props[key]
	if !ok {
		return &xproto.GetPropertyReply{Type: xproto.AtomNone}, nil
	}
	value := append([]byte(nil), p.data...)
	if del {
		f.remove(key)
	}
	return &xproto.GetPropertyReply{
		Format:   p.format,
		Type:     p.typ,
		ValueLen: uint32(len(value)),
		Value:    value,
	}, nil
}

func (f *fakeDisplay) ChangeProperty(w xproto.Window, prop, typ xproto.Atom, data []byte) error {
	if f.changeErr != nil {
		return f.changeErr
	}
	if f.maxProp > 0 && len(data) > f.maxProp {
		return errPropTooLarge
	}
	f.write(propKey{w, prop}, fakeProp{typ: typ, format: 8, data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeDisplay) DeleteProperty(w xproto.Window, prop xproto.Atom) error {
	f.remove(propKey{w, prop})
	return nil
}

func (f *fakeDisplay) SendSelectionNotify(ev xproto.SelectionNotifyEvent) error {
	f.sent = append(f.sent, ev)
	return nil
}

func (f *fakeDisplay) WaitForEvent() (xgb.Event, error) {
	if len(f.queue) == 0 {
		return nil, errFakeClosed
	}
	return f.pop()
}

func (f *fakeDisplay) PollForEvent() (xgb.Event, error) {
	if len(f.queue) == 0 {
		return nil, nil
	}
	return f.pop()
}

func (f *fakeDisplay) pop() (xgb.Event, error) {
	q := f.queue[0]
	f.queue = f.queue[1:]
	return q.ev, q.err
}

func (f *fakeDisplay) push(ev xgb.Event) { f.queue = append(f.queue, queued{ev: ev}) }

func (f *fakeDisplay) pushErr(err error) { f.queue = append(f.queue, queued{err: err}) }

func (f *fakeDisplay) write(key propKey, p fakeProp) {
	f.props[key] = p
	if key.win == f.win {
		f.push(xproto.PropertyNotifyEvent{Window: key.win, Atom: key.atom, State: xproto.PropertyNewValue})
	}
}

// remove deletes a property and, mid INCR, lets the owner send the next chunk.
func (f *fakeDisplay) remove(key propKey) {
	if _, ok := f.props[key]; !ok {
		return
	}
	delete(f.props, key)
	f.deleted = append(f.deleted, key)
	if key.win == f.win {
		f.push(xproto.PropertyNotifyEvent{Window: key.win, Atom: key.atom, State: xproto.PropertyDelete})
	}
	if s := f.incr; s != nil && s.key == key {
		if s.next >= len(s.peer.chunks) {
			f.incr = nil
			return
		}
		chunk := s.peer.chunks[s.next]
		s.next++
		f.write(key, fakeProp{typ: f.atom(NameUTF8), format: 8, data: chunk})
	}
}

func (f *fakeDisplay) setOwner(owner xproto.Window, sel xproto.Atom, t xproto.Timestamp) {
	prev := f.owner
	f.owner = owner
	if prev == f.win && owner != f.win {
		f.push(xproto.SelectionClearEvent{Time: t, Owner: f.win, Selection: sel})
	}
	if f.xfixes {
		f.push(xfixes.SelectionNotifyEvent{
			Subtype:            xfixes.SelectionEventSetSelectionOwner,
			Window:             f.win,
			Owner:              owner,
			Selection:          sel,
			Timestamp:          t,
			SelectionTimestamp: t,
		})
	}
}

// peerCopies makes p the clipboard owner at time t.
func (f *fakeDisplay) peerCopies(p *fakePeer, t xproto.Timestamp) {
	f.peers[p.win] = p
	f.setOwner(p.win, f.atom(NameClipboard), t)
}

// peerExits drops p's ownership the way the server does when a client
// disconnects.
func (f *fakeDisplay) peerExits(p *fakePeer, t xproto.Timestamp) {
	delete(f.peers, p.win)
	if f.owner != p.win {
		return
	}
	f.owner = xproto.WindowNone
	if f.xfixes {
		f.push(xfixes.SelectionNotifyEvent{
			Subtype:   xfixes.SelectionEventSelectionClientClose,
			Window:    f.win,
			Owner:     xproto.WindowNone,
			Selection: f.atom(NameClipboard),
			Timestamp: t,
		})
	}
}

// request queues a SelectionRequest from client for target into prop.
func (f *fakeDisplay) request(client xproto.Window, target, prop xproto.Atom, t xproto.Timestamp) {
	f.push(xproto.SelectionRequestEvent{
		Time:      t,
		Owner:     f.win,
		Requestor: client,
		Selection: f.atom(NameClipboard),
		Target:    target,
		Property:  prop,
	})
}

// drain hands every queued event to k.
func drain(k *Keeper, f *fakeDisplay) {
	for {
		ev, err := f.PollForEvent()
		if ev == nil && err == nil {
			return
		}
		if ev != nil {
			k.Handle(ev)
		}
	}
}

func newTestKeeper(f *fakeDisplay, opts Options) *Keeper {
	atoms, err := ResolveAtoms(f)
	if err != nil {
		panic(err)
	}
	return New(f, atoms, opts)
}
