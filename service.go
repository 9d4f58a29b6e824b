package hkaccessory

import (
	"context"
	"sync"
)

// ServiceDescription is the HAP JSON form of a service.
type ServiceDescription struct {
	Id      uint64                     `json:"iid"`
	Type    HapServiceType             `json:"type"`
	Cs      []CharacteristicDescriptor `json:"characteristics"`
	Hidden  *bool                      `json:"hidden,omitempty"`
	Primary *bool                      `json:"primary,omitempty"`
	Linked  []uint64                   `json:"linked,omitempty"`
}

// Service groups the characteristics of one accessory function.
type Service struct {
	Type    HapServiceType
	Hidden  bool
	Primary bool

	mu     sync.Mutex
	iid    uint64
	cs     []*Characteristic
	linked []*Service
}

func NewService(t HapServiceType, cs ...*Characteristic) *Service {
	return &Service{Type: t, cs: cs}
}

// AddCharacteristic appends c. Instance ids are assigned when the service
// is added to an accessory.
func (s *Service) AddCharacteristic(c *Characteristic) *Service {
	s.mu.Lock()
	s.cs = append(s.cs, c)
	s.mu.Unlock()
	return s
}

// AddLinkedService marks l as linked to s.
func (s *Service) AddLinkedService(l *Service) *Service {
	s.mu.Lock()
	s.linked = append(s.linked, l)
	s.mu.Unlock()
	return s
}

func (s *Service) IID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iid
}

func (s *Service) Characteristics() []*Characteristic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Characteristic{}, s.cs...)
}

// GetCharacteristic returns the first characteristic of the given type.
func (s *Service) GetCharacteristic(t HapCharacteristicType) *Characteristic {
	for _, c := range s.Characteristics() {
		if ShortUUID(c.UUID()) == string(t.ToShort()) {
			return c
		}
	}
	return nil
}

// assignIIDs numbers the service and its characteristics starting at next
// and returns the next free id.
func (s *Service) assignIIDs(next uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iid = next
	next++
	for _, c := range s.cs {
		c.SetIID(next)
		next++
	}
	return next
}

// ToHAP renders the service and all its characteristics.
func (s *Service) ToHAP(ctx context.Context, conn Connection, queryLive bool) (ServiceDescription, error) {
	s.mu.Lock()
	d := ServiceDescription{Id: s.iid, Type: s.Type.ToShort()}
	if s.Hidden {
		hidden := true
		d.Hidden = &hidden
	}
	if s.Primary {
		primary := true
		d.Primary = &primary
	}
	cs := append([]*Characteristic{}, s.cs...)
	linked := append([]*Service{}, s.linked...)
	s.mu.Unlock()

	for _, l := range linked {
		d.Linked = append(d.Linked, l.IID())
	}
	d.Cs = make([]CharacteristicDescriptor, 0, len(cs))
	for _, c := range cs {
		cd, err := c.ToHAP(ctx, conn, queryLive)
		if err != nil {
			return ServiceDescription{}, err
		}
		d.Cs = append(d.Cs, cd)
	}
	return d, nil
}
