package classfile

import "testing"

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"()V", "() void"},
		{"(I[JLjava/lang/String;)Z", "(int, long[], java.lang.String) boolean"},
		{"([[Ljava/util/Map$Entry;)[B", "(java.util.Map$Entry[][]) byte[]"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md := ParseMethodDescriptor(tt.desc)
			if md == nil {
				t.Fatalf("ParseMethodDescriptor(%q) = nil", tt.desc)
			}
			if got := md.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMethodDescriptorInvalid(t *testing.T) {
	for _, desc := range []string{"", "V", "(I", "(Q)V", "()", "(L;)V", "()VV"} {
		if md := ParseMethodDescriptor(desc); md != nil {
			t.Errorf("ParseMethodDescriptor(%q) = %v, want nil", desc, md)
		}
	}
}

func TestFieldTypeSlots(t *testing.T) {
	tests := []struct {
		desc string
		want int
	}{
		{"J", 2},
		{"D", 2},
		{"[J", 1},
		{"I", 1},
		{"Ljava/lang/Object;", 1},
	}
	for _, tt := range tests {
		ft := ParseFieldDescriptor(tt.desc)
		if ft == nil {
			t.Fatalf("ParseFieldDescriptor(%q) = nil", tt.desc)
		}
		if got := ft.Slots(); got != tt.want {
			t.Errorf("%s: got %d slots, want %d", tt.desc, got, tt.want)
		}
	}
}
