package circuit

import (
	"testing"
)

func TestAppendValidation(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		wantErr bool
	}{
		{
			name: "valid single qubit",
			op:   Op{Name: "x", Qargs: []int{0}},
		},
		{
			name: "valid two qubit",
			op:   Op{Name: "cx", Qargs: []int{0, 2}},
		},
		{
			name: "valid measure with clbit",
			op:   Op{Name: "measure", Qargs: []int{1}, Cargs: []int{0}},
		},
		{
			name:    "empty name",
			op:      Op{Qargs: []int{0}},
			wantErr: true,
		},
		{
			name:    "no qubits",
			op:      Op{Name: "x"},
			wantErr: true,
		},
		{
			name:    "qubit out of range",
			op:      Op{Name: "x", Qargs: []int{3}},
			wantErr: true,
		},
		{
			name:    "negative qubit",
			op:      Op{Name: "x", Qargs: []int{-1}},
			wantErr: true,
		},
		{
			name:    "duplicate qubit",
			op:      Op{Name: "cx", Qargs: []int{1, 1}},
			wantErr: true,
		},
		{
			name:    "clbit out of range",
			op:      Op{Name: "measure", Qargs: []int{0}, Cargs: []int{2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(Register{Name: "q", Size: 3}, 2)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			err = c.Append(tt.op)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for op %+v", tt.op)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Register{Name: "", Size: 2}, 0); err == nil {
		t.Error("expected error for empty register name")
	}
	if _, err := New(Register{Name: "q", Size: 0}, 0); err == nil {
		t.Error("expected error for zero-size register")
	}
	if _, err := New(Register{Name: "q", Size: 2}, -1); err == nil {
		t.Error("expected error for negative clbit count")
	}
}

func TestOpsOrderPreserved(t *testing.T) {
	c, err := New(Register{Name: "q", Size: 3}, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	names := []string{"h", "cx", "rz", "cx"}
	ops := []Op{
		{Name: "h", Qargs: []int{0}},
		{Name: "cx", Qargs: []int{0, 1}},
		{Name: "rz", Qargs: []int{1}, Params: []float64{0.5}},
		{Name: "cx", Qargs: []int{1, 2}},
	}
	for _, op := range ops {
		if err := c.Append(op); err != nil {
			t.Fatalf("Append(%q) failed: %v", op.Name, err)
		}
	}

	got := c.Ops()
	if len(got) != len(names) {
		t.Fatalf("NumOps = %d, want %d", len(got), len(names))
	}
	for i, op := range got {
		if op.Name != names[i] {
			t.Errorf("op %d name = %q, want %q", i, op.Name, names[i])
		}
	}
}

func TestEmptyLike(t *testing.T) {
	c, err := New(Register{Name: "q", Size: 4}, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c.Append(Op{Name: "x", Qargs: []int{0}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	e := c.EmptyLike()
	if e.NumOps() != 0 {
		t.Errorf("EmptyLike should have no ops, got %d", e.NumOps())
	}
	if e.Register() != c.Register() {
		t.Errorf("EmptyLike register = %+v, want %+v", e.Register(), c.Register())
	}
	if e.NumClbits() != c.NumClbits() {
		t.Errorf("EmptyLike clbits = %d, want %d", e.NumClbits(), c.NumClbits())
	}
}
