package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal/Unmarshal below hand-assemble protobuf wire format using the
// low-level protowire primitives — the same package the generated
// google.golang.org/protobuf code calls into one layer up. Field numbers
// match the schema documented in types.go. Unknown fields are skipped on
// read (forward compatibility); every field here is optional on read
// (backward compatibility with a leaner future writer).

// Marshal encodes t as a length-delimited Tags submessage body.
func (t Tags) Marshal() []byte {
	var b []byte
	if t.AgentID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, t.AgentID)
	}
	if t.Zone != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, t.Zone)
	}
	if t.Region != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, t.Region)
	}
	return b
}

// UnmarshalTags decodes a Tags submessage body.
func UnmarshalTags(b []byte) (Tags, error) {
	var t Tags
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return t, fmt.Errorf("wire: Tags: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(b)
			if m < 0 {
				return t, fmt.Errorf("wire: Tags.agent_id: %w", protowire.ParseError(m))
			}
			t.AgentID = s
			b = b[m:]
		case num == 2 && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(b)
			if m < 0 {
				return t, fmt.Errorf("wire: Tags.zone: %w", protowire.ParseError(m))
			}
			t.Zone = s
			b = b[m:]
		case num == 3 && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(b)
			if m < 0 {
				return t, fmt.Errorf("wire: Tags.region: %w", protowire.ParseError(m))
			}
			t.Region = s
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return t, fmt.Errorf("wire: Tags: skip unknown field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return t, nil
}

// Marshal encodes m as a length-delimited CheckJobMetrics submessage body.
func (m CheckJobMetrics) Marshal() []byte {
	var b []byte
	if m.LatencyPresent {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, m.LatencyMS)
	}
	return b
}

// UnmarshalCheckJobMetrics decodes a CheckJobMetrics submessage body.
func UnmarshalCheckJobMetrics(b []byte) (CheckJobMetrics, error) {
	var m CheckJobMetrics
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: CheckJobMetrics: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, k := protowire.ConsumeVarint(b)
			if k < 0 {
				return m, fmt.Errorf("wire: CheckJobMetrics.latency: %w", protowire.ParseError(k))
			}
			m.LatencyMS = v
			m.LatencyPresent = true
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return m, fmt.Errorf("wire: CheckJobMetrics: skip unknown field %d: %w", num, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	return m, nil
}

func appendTimestamp(b []byte, fieldNum protowire.Number, t time.Time) []byte {
	// Timestamp submessage: { 1: int64 seconds; 2: int32 nanos; } — same
	// shape as google.protobuf.Timestamp, encoded inline rather than
	// imported, since the core only ever needs to round-trip it.
	var body []byte
	body = protowire.AppendTag(body, 1, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.Unix()))
	if ns := t.Nanosecond(); ns != 0 {
		body = protowire.AppendTag(body, 2, protowire.VarintType)
		body = protowire.AppendVarint(body, uint64(ns))
	}
	b = protowire.AppendTag(b, fieldNum, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b
}

func consumeTimestamp(b []byte) (time.Time, error) {
	var sec int64
	var nsec int64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return time.Time{}, fmt.Errorf("wire: Timestamp: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, k := protowire.ConsumeVarint(b)
			if k < 0 {
				return time.Time{}, fmt.Errorf("wire: Timestamp.seconds: %w", protowire.ParseError(k))
			}
			sec = int64(v)
			b = b[k:]
		case num == 2 && typ == protowire.VarintType:
			v, k := protowire.ConsumeVarint(b)
			if k < 0 {
				return time.Time{}, fmt.Errorf("wire: Timestamp.nanos: %w", protowire.ParseError(k))
			}
			nsec = int64(v)
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return time.Time{}, fmt.Errorf("wire: Timestamp: skip unknown field %d: %w", num, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	return time.Unix(sec, nsec).UTC(), nil
}

// Marshal encodes r as a length-delimited CheckResult submessage body.
func (r CheckResult) Marshal() []byte {
	var b []byte
	if r.IDULID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, r.IDULID)
	}
	if r.RunAtSet {
		b = appendTimestamp(b, 2, r.RunAt)
	}
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int32(r.Status)))
	if metrics := r.Metrics.Marshal(); len(metrics) > 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, metrics)
	}
	if r.Tags != nil {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Tags.Marshal())
	}
	if len(r.Details) > 0 {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Details)
	}
	return b
}

// UnmarshalCheckResult decodes a CheckResult submessage body.
func UnmarshalCheckResult(b []byte) (CheckResult, error) {
	var r CheckResult
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, fmt.Errorf("wire: CheckResult: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, k := protowire.ConsumeString(b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult.id_ulid: %w", protowire.ParseError(k))
			}
			r.IDULID = s
			b = b[k:]
		case num == 2 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult.run_at: %w", protowire.ParseError(k))
			}
			ts, err := consumeTimestamp(body)
			if err != nil {
				return r, err
			}
			r.RunAt = ts
			r.RunAtSet = true
			b = b[k:]
		case num == 3 && typ == protowire.VarintType:
			v, k := protowire.ConsumeVarint(b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult.status: %w", protowire.ParseError(k))
			}
			r.Status = Status(int32(v))
			b = b[k:]
		case num == 4 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult.metrics: %w", protowire.ParseError(k))
			}
			metrics, err := UnmarshalCheckJobMetrics(body)
			if err != nil {
				return r, err
			}
			r.Metrics = metrics
			b = b[k:]
		case num == 5 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult.tags: %w", protowire.ParseError(k))
			}
			tags, err := UnmarshalTags(body)
			if err != nil {
				return r, err
			}
			r.Tags = &tags
			b = b[k:]
		case num == 6 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult.details: %w", protowire.ParseError(k))
			}
			r.Details = append([]byte(nil), body...)
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return r, fmt.Errorf("wire: CheckResult: skip unknown field %d: %w", num, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	return r, nil
}

// Marshal encodes req as a complete CheckBatchRequest message.
func (req CheckBatchRequest) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, req.Tags.Marshal())
	for _, ev := range req.Events {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, ev.Marshal())
	}
	if req.CreatedAtSet {
		b = appendTimestamp(b, 3, req.CreatedAt)
	}
	return b, nil
}

// Unmarshal decodes a complete CheckBatchRequest message into req.
func (req *CheckBatchRequest) Unmarshal(b []byte) error {
	var out CheckBatchRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: CheckBatchRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return fmt.Errorf("wire: CheckBatchRequest.tags: %w", protowire.ParseError(k))
			}
			tags, err := UnmarshalTags(body)
			if err != nil {
				return err
			}
			out.Tags = tags
			b = b[k:]
		case num == 2 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return fmt.Errorf("wire: CheckBatchRequest.events: %w", protowire.ParseError(k))
			}
			ev, err := UnmarshalCheckResult(body)
			if err != nil {
				return err
			}
			out.Events = append(out.Events, ev)
			b = b[k:]
		case num == 3 && typ == protowire.BytesType:
			body, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return fmt.Errorf("wire: CheckBatchRequest.created_at: %w", protowire.ParseError(k))
			}
			ts, err := consumeTimestamp(body)
			if err != nil {
				return err
			}
			out.CreatedAt = ts
			out.CreatedAtSet = true
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return fmt.Errorf("wire: CheckBatchRequest: skip unknown field %d: %w", num, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	*req = out
	return nil
}

// Marshal encodes resp as a complete CheckBatchResponse message.
func (resp CheckBatchResponse) Marshal() ([]byte, error) {
	var b []byte
	if resp.Error != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, resp.Error)
	}
	return b, nil
}

// Unmarshal decodes a complete CheckBatchResponse message into resp.
func (resp *CheckBatchResponse) Unmarshal(b []byte) error {
	var out CheckBatchResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: CheckBatchResponse: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, k := protowire.ConsumeString(b)
			if k < 0 {
				return fmt.Errorf("wire: CheckBatchResponse.error: %w", protowire.ParseError(k))
			}
			out.Error = s
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return fmt.Errorf("wire: CheckBatchResponse: skip unknown field %d: %w", num, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	*resp = out
	return nil
}

// Marshal encodes req; HealthRequest has no fields.
func (req HealthRequest) Marshal() ([]byte, error) { return nil, nil }

// Unmarshal decodes into req; any bytes present are unknown fields, skipped.
func (req *HealthRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: HealthRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		k := protowire.ConsumeFieldValue(num, typ, b)
		if k < 0 {
			return fmt.Errorf("wire: HealthRequest: skip unknown field %d: %w", num, protowire.ParseError(k))
		}
		b = b[k:]
	}
	return nil
}

// Marshal encodes resp as a complete HealthResponse message.
func (resp HealthResponse) Marshal() ([]byte, error) {
	var b []byte
	if resp.Healthy {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

// Unmarshal decodes a complete HealthResponse message into resp.
func (resp *HealthResponse) Unmarshal(b []byte) error {
	var out HealthResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: HealthResponse: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, k := protowire.ConsumeVarint(b)
			if k < 0 {
				return fmt.Errorf("wire: HealthResponse.healthy: %w", protowire.ParseError(k))
			}
			out.Healthy = v != 0
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return fmt.Errorf("wire: HealthResponse: skip unknown field %d: %w", num, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	*resp = out
	return nil
}
