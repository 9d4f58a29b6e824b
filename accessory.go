package hkaccessory

import (
	"context"
	"fmt"
	"sync"

	"github.com/olebedev/emitter"
)

// AccessoryDescription is the HAP JSON form of an accessory.
type AccessoryDescription struct {
	Id uint64               `json:"aid"`
	Ss []ServiceDescription `json:"services"`
}

type Accessories struct {
	Accs []AccessoryDescription `json:"accessories"`
}

func (a *AccessoryDescription) GetService(serviceType HapServiceType) *ServiceDescription {
	for i := range a.Ss {
		if a.Ss[i].Type.ToShort() == serviceType.ToShort() {
			return &a.Ss[i]
		}
	}
	return nil
}

// CharacteristicPut is one entry of a PUT /characteristics body.
type CharacteristicPut struct {
	Aid    uint64 `json:"aid"`
	Iid    uint64 `json:"iid"`
	Value  any    `json:"value,omitempty"`
	Events *bool  `json:"ev,omitempty"`
	// Response asks for the write response value.
	Response *bool `json:"r,omitempty"`
}

// CharacteristicResult is one entry of a GET or PUT /characteristics
// response body.
type CharacteristicResult struct {
	Aid    uint64     `json:"aid"`
	Iid    uint64     `json:"iid"`
	Value  any        `json:"value,omitempty"`
	Status *HAPStatus `json:"status,omitempty"`
}

type eventCallback func(*emitter.Event)

// Accessory owns services, assigns instance ids and routes requests to
// characteristics by iid. Value changes are emitted on the embedded
// emitter under "event <aid> <iid>" with args aid, iid, formatted value and
// the originating Connection.
type Accessory struct {
	emitter.Emitter

	Id uint64

	mu       sync.Mutex
	services []*Service
	byIid    map[uint64]*Characteristic
	nextIid  uint64
	offs     []func()
}

func NewAccessory(aid uint64) *Accessory {
	a := &Accessory{
		Id:      aid,
		Emitter: emitter.Emitter{},
		byIid:   make(map[uint64]*Characteristic),
		nextIid: 1,
	}
	// flat callbacks
	a.Use("*", emitter.Void)
	return a
}

func eventTopic(aid, iid uint64) string {
	return fmt.Sprintf("event %d %d", aid, iid)
}

// AddService numbers s and its characteristics and starts forwarding their
// changes.
func (a *Accessory) AddService(s *Service) *Accessory {
	a.mu.Lock()
	a.nextIid = s.assignIIDs(a.nextIid)
	a.services = append(a.services, s)
	for _, c := range s.Characteristics() {
		a.byIid[c.IID()] = c
		a.offs = append(a.offs, a.forward(c))
	}
	a.mu.Unlock()
	return a
}

func (a *Accessory) forward(c *Characteristic) func() {
	topic := eventTopic(a.Id, c.IID())
	iid := c.IID()
	return c.OnChange(func(ch Change) {
		props := c.Props()
		if !props.Perms.CanNotify() {
			return
		}
		var v any
		if ch.NewValue != nil {
			v = FormatOutgoingValue(ch.NewValue, props)
		}
		<-a.Emit(topic, a.Id, iid, v, ch.Originator)
	})
}

// Close stops forwarding characteristic changes.
func (a *Accessory) Close() {
	a.mu.Lock()
	offs := a.offs
	a.offs = nil
	a.mu.Unlock()
	for _, off := range offs {
		off()
	}
}

func (a *Accessory) GetService(serviceType HapServiceType) *Service {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.services {
		if s.Type.ToShort() == serviceType.ToShort() {
			return s
		}
	}
	return nil
}

// Characteristic returns the characteristic with instance id iid.
func (a *Accessory) Characteristic(iid uint64) (*Characteristic, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.byIid[iid]
	return c, ok
}

// ToHAP renders the accessory database entry.
func (a *Accessory) ToHAP(ctx context.Context, conn Connection, queryLive bool) (AccessoryDescription, error) {
	a.mu.Lock()
	services := append([]*Service{}, a.services...)
	a.mu.Unlock()

	d := AccessoryDescription{Id: a.Id, Ss: make([]ServiceDescription, 0, len(services))}
	for _, s := range services {
		sd, err := s.ToHAP(ctx, conn, queryLive)
		if err != nil {
			return AccessoryDescription{}, err
		}
		d.Ss = append(d.Ss, sd)
	}
	return d, nil
}

func failed(aid, iid uint64, status HAPStatus) CharacteristicResult {
	return CharacteristicResult{Aid: aid, Iid: iid, Status: &status}
}

// GetCharacteristics reads the given instance ids, every failure is
// reported in place.
func (a *Accessory) GetCharacteristics(ctx context.Context, conn Connection, iids []uint64) []CharacteristicResult {
	res := make([]CharacteristicResult, 0, len(iids))
	for _, iid := range iids {
		c, ok := a.Characteristic(iid)
		if !ok {
			res = append(res, failed(a.Id, iid, StatusResourceDoesNotExist))
			continue
		}
		v, err := c.HandleGetRequest(ctx, conn, nil)
		if err != nil {
			status, _ := StatusFromError(err)
			res = append(res, failed(a.Id, iid, status))
			continue
		}
		r := CharacteristicResult{Aid: a.Id, Iid: iid, Value: jsonNull}
		if v != nil {
			r.Value = FormatOutgoingValue(v, c.Props())
		}
		res = append(res, r)
	}
	return res
}

// PutCharacteristics applies writes and event subscriptions. Entries for
// another aid fail with StatusResourceDoesNotExist.
func (a *Accessory) PutCharacteristics(ctx context.Context, conn Connection, puts []CharacteristicPut) []CharacteristicResult {
	res := make([]CharacteristicResult, 0, len(puts))
	for _, p := range puts {
		c, ok := a.Characteristic(p.Iid)
		if p.Aid != a.Id || !ok {
			res = append(res, failed(p.Aid, p.Iid, StatusResourceDoesNotExist))
			continue
		}

		if p.Events != nil {
			if !c.Props().Perms.CanNotify() {
				res = append(res, failed(p.Aid, p.Iid, StatusNotificationNotSupported))
				continue
			}
			if *p.Events {
				c.Subscribe()
			} else {
				c.Unsubscribe()
			}
		}

		r := CharacteristicResult{Aid: p.Aid, Iid: p.Iid}
		if p.Value != nil {
			v, err := c.HandleSetRequest(ctx, p.Value, conn, nil)
			if err != nil {
				status, _ := StatusFromError(err)
				res = append(res, failed(p.Aid, p.Iid, status))
				continue
			}
			if v != nil && p.Response != nil && *p.Response {
				r.Value = FormatOutgoingValue(v, c.Props())
			}
		}
		success := StatusSuccess
		r.Status = &success
		res = append(res, r)
	}
	return res
}

// SubscribeToEvents calls callback for changes of characteristic iid.
func (a *Accessory) SubscribeToEvents(iid uint64, callback eventCallback) error {
	if _, ok := a.Characteristic(iid); !ok {
		return fmt.Errorf("%w: iid %d", StatusResourceDoesNotExist, iid)
	}
	a.On(eventTopic(a.Id, iid), callback)
	return nil
}

func (a *Accessory) UnsubscribeFromEvents(iid uint64) {
	a.Off(eventTopic(a.Id, iid))
}
