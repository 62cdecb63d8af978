package registry

import "testing"

func TestNewRegistersPrimitivesAndCoercions(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		typ  *Type
		sort Sort
	}{
		{"void", r.VoidType(), Void},
		{"boolean", r.BoolType(), Bool},
		{"int", r.IntType(), Int},
		{"Object", r.ObjectType(), Object},
		{"def", r.DefType(), Def},
	}
	for _, tt := range tests {
		if tt.typ == nil || tt.typ.Sort != tt.sort {
			t.Errorf("%s: got %v, want sort %v", tt.name, tt.typ, tt.sort)
		}
	}

	// widening int -> double is implicit; narrowing double -> int requires an
	// explicit cast (spec.md §4.1 promotion table).
	if c := r.LookupCast(r.IntType(), r.LookupType("double"), false); c == nil {
		t.Error("expected implicit int->double coercion")
	}
	if c := r.LookupCast(r.LookupType("double"), r.IntType(), false); c != nil {
		t.Error("double->int should not be implicit")
	}
	if c := r.LookupCast(r.LookupType("double"), r.IntType(), true); c == nil {
		t.Error("expected explicit double->int coercion")
	}
}

func TestDefineStructDuplicateIsBuildError(t *testing.T) {
	r := New()
	if err := r.DefineStruct("Widget", ""); err != nil {
		t.Fatalf("first DefineStruct: %v", err)
	}
	if err := r.DefineStruct("Widget", ""); err == nil {
		t.Fatal("expected duplicate struct to be a build error")
	}
}

func TestDefineStructUnknownParent(t *testing.T) {
	r := New()
	if err := r.DefineStruct("Widget", "Gizmo"); err == nil {
		t.Fatal("expected unknown parent struct to be a build error")
	}
}

func TestInheritMembersReplaysParentMethods(t *testing.T) {
	r := New()
	if err := r.DefineStruct("Base", ""); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineStruct("Derived", "Base"); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineMethod("Base", &Method{Name: "greet", Return: r.ObjectType()}); err != nil {
		t.Fatal(err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	derived := r.structs["Derived"]
	m := derived.LookupMethod(MethodKey{Name: "greet", Arity: 0})
	if m == nil {
		t.Fatal("expected Derived to inherit Base.greet")
	}
	if m.Owner != derived {
		t.Errorf("inherited method Owner = %v, want Derived (rebound)", m.Owner.Name)
	}
}

func TestDuplicateMemberOnSameStructIsBuildError(t *testing.T) {
	r := New()
	if err := r.DefineStruct("Widget", ""); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineMethod("Widget", &Method{Name: "size", Return: r.IntType()}); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineMethod("Widget", &Method{Name: "size", Return: r.IntType()}); err == nil {
		t.Fatal("expected duplicate (name, arity) member to be a build error")
	}
}

func TestIsSubtypeOf(t *testing.T) {
	r := New()
	if err := r.DefineStruct("Animal", ""); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineStruct("Dog", "Animal"); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineStruct("Cat", "Animal"); err != nil {
		t.Fatal(err)
	}
	dog, cat, animal := r.structs["Dog"], r.structs["Cat"], r.structs["Animal"]
	if !dog.IsSubtypeOf(animal) {
		t.Error("Dog should be a subtype of Animal")
	}
	if dog.IsSubtypeOf(cat) {
		t.Error("Dog should not be a subtype of Cat")
	}
	if !dog.IsSubtypeOf(dog) {
		t.Error("a struct should be a subtype of itself")
	}
}

func TestFreezeIsIdempotentAndLocksDefinitions(t *testing.T) {
	r := New()
	if err := r.DefineStruct("Widget", ""); err != nil {
		t.Fatal(err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("first Freeze: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("second Freeze should be a no-op, got: %v", err)
	}
	if !r.Frozen() {
		t.Fatal("expected Frozen() to be true after Freeze")
	}
	if err := r.DefineStruct("TooLate", ""); err == nil {
		t.Fatal("expected DefineStruct after Freeze to be a build error")
	}
}

func TestLookupTypeResolvesArrayDescriptors(t *testing.T) {
	r := New()
	arr := r.LookupType("int[]")
	if arr == nil || arr.Sort != Array || arr.Dims != 1 {
		t.Fatalf("int[] = %v, want a 1-dim array type", arr)
	}
	arr2 := r.LookupType("int[][]")
	if arr2 == nil || arr2.Dims != 2 {
		t.Fatalf("int[][] = %v, want a 2-dim array type", arr2)
	}
	if r.LookupType("NoSuchType[]") != nil {
		t.Error("expected nil for an array of an unregistered element type")
	}
}

func TestPromoteBinary(t *testing.T) {
	r := New()
	intT, doubleT, boolT := r.IntType(), r.LookupType("double"), r.BoolType()

	if got := r.PromoteBinary(intT, doubleT); got != doubleT {
		t.Errorf("int+double promotes to %v, want double", got)
	}
	if got := r.PromoteBinary(boolT, boolT); got != boolT {
		t.Errorf("boolean+boolean promotes to %v, want boolean", got)
	}
	byteT := r.LookupType("byte")
	if got := r.PromoteBinary(byteT, byteT); got != intT {
		t.Errorf("byte+byte promotes to %v, want int (narrower-than-int widening)", got)
	}
}

func TestTypeEqualsIsStructural(t *testing.T) {
	r1, r2 := New(), New()
	if !r1.IntType().Equals(r2.IntType()) {
		t.Error("two distinct registries' int Types should compare structurally equal")
	}
	if r1.IntType().Equals(r1.BoolType()) {
		t.Error("int should not equal boolean")
	}
}
