package video

import (
	"fmt"
	"time"

	"github.com/alclab/alvideo/pkg/config"
	"github.com/alclab/alvideo/pkg/constants"
	"github.com/pion/webrtc/v3"
)

// IceTransportPolicy restricts which candidate types may be used.
type IceTransportPolicy string

const (
	// IceTransportPolicyAll considers every gathered candidate.
	IceTransportPolicyAll IceTransportPolicy = "all"
	// IceTransportPolicyRelay only considers TURN relay candidates.
	IceTransportPolicyRelay IceTransportPolicy = "relay"
)

// IceServer describes a single STUN or TURN server.
type IceServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// IceOptions is the custom network-traversal configuration carried by
// ConnectOptions. A nil IceOptions means engine defaults.
type IceOptions struct {
	Servers         []IceServer        `json:"servers"`
	TransportPolicy IceTransportPolicy `json:"transportPolicy,omitempty"`
	GatherTimeout   time.Duration      `json:"gatherTimeout,omitempty"`
}

// DefaultIceOptions returns the engine default ICE configuration.
func DefaultIceOptions() *IceOptions {
	servers := constants.DefaultStunServers
	if cfg := config.GlobalConfig; cfg != nil && len(cfg.StunServers) > 0 {
		servers = cfg.StunServers
	}
	return &IceOptions{
		Servers:         []IceServer{{URLs: append([]string(nil), servers...)}},
		TransportPolicy: IceTransportPolicyAll,
		GatherTimeout:   constants.DefaultICETimeout,
	}
}

// configuration converts the options into a pion Configuration.
func (o *IceOptions) configuration() webrtc.Configuration {
	if o == nil {
		o = DefaultIceOptions()
	}
	cfg := webrtc.Configuration{}
	for _, s := range o.Servers {
		server := webrtc.ICEServer{URLs: append([]string(nil), s.URLs...)}
		if s.Username != "" {
			server.Username = s.Username
			server.Credential = s.Credential
			server.CredentialType = webrtc.ICECredentialTypePassword
		}
		cfg.ICEServers = append(cfg.ICEServers, server)
	}
	if o.TransportPolicy == IceTransportPolicyRelay {
		cfg.ICETransportPolicy = webrtc.ICETransportPolicyRelay
	}
	return cfg
}

// gatherTimeout returns the effective ICE gathering timeout.
func (o *IceOptions) gatherTimeout() time.Duration {
	if o == nil || o.GatherTimeout <= 0 {
		return constants.DefaultICETimeout
	}
	return o.GatherTimeout
}

// clone deep-copies the options so frozen ConnectOptions can't be mutated
// through a retained builder reference.
func (o *IceOptions) clone() *IceOptions {
	if o == nil {
		return nil
	}
	out := &IceOptions{
		TransportPolicy: o.TransportPolicy,
		GatherTimeout:   o.GatherTimeout,
	}
	for _, s := range o.Servers {
		out.Servers = append(out.Servers, IceServer{
			URLs:       append([]string(nil), s.URLs...),
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}

// equal reports value equality, treating nil as "engine defaults" distinct
// from any explicit configuration.
func (o *IceOptions) equal(other *IceOptions) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.TransportPolicy != other.TransportPolicy || o.GatherTimeout != other.GatherTimeout {
		return false
	}
	if len(o.Servers) != len(other.Servers) {
		return false
	}
	for i, s := range o.Servers {
		t := other.Servers[i]
		if s.Username != t.Username || s.Credential != t.Credential || len(s.URLs) != len(t.URLs) {
			return false
		}
		for j, u := range s.URLs {
			if u != t.URLs[j] {
				return false
			}
		}
	}
	return true
}

func (o *IceOptions) String() string {
	if o == nil {
		return "IceOptions{defaults}"
	}
	return fmt.Sprintf("IceOptions{Servers: %d, TransportPolicy: %s, GatherTimeout: %v}",
		len(o.Servers), o.TransportPolicy, o.GatherTimeout)
}
