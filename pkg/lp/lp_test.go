package lp

import "testing"

func TestDuplicateVariable(t *testing.T) {
	m := NewModel("test", true)
	if _, err := m.AddBinary("x"); err != nil {
		t.Fatalf("第一次添加失败: %v", err)
	}
	if _, err := m.AddBinary("x"); err == nil {
		t.Error("重复变量名应报错")
	}
	if _, err := m.AddInteger("x"); err == nil {
		t.Error("重复变量名跨类型也应报错")
	}
	if m.NumVars() != 1 {
		t.Errorf("NumVars() = %d, want 1", m.NumVars())
	}
}

func TestDuplicateConstraint(t *testing.T) {
	m := NewModel("test", true)
	x, _ := m.AddBinary("x")

	var e Expr
	e.Add(1, x)
	if err := m.AddConstraint("c1", e, LessEq, 1); err != nil {
		t.Fatalf("第一次添加失败: %v", err)
	}
	if err := m.AddConstraint("c1", e, LessEq, 2); err == nil {
		t.Error("重复约束名应报错")
	}
	if m.NumConstraints() != 1 {
		t.Errorf("NumConstraints() = %d, want 1", m.NumConstraints())
	}
}

func TestEmptyConstraintRejected(t *testing.T) {
	m := NewModel("test", true)
	if err := m.AddConstraint("empty", Expr{}, Equal, 0); err == nil {
		t.Error("空表达式约束应报错")
	}
}

func TestVarLookup(t *testing.T) {
	m := NewModel("test", false)
	x, _ := m.AddBinary("x")

	got, ok := m.Var("x")
	if !ok || got != x {
		t.Error("Var() 应返回已注册的变量")
	}
	if _, ok := m.Var("y"); ok {
		t.Error("未注册的变量不应存在")
	}
	if m.HasVar("y") {
		t.Error("HasVar对缺失变量应为false")
	}
}

func TestExprAddExpr(t *testing.T) {
	m := NewModel("test", true)
	x, _ := m.AddBinary("x")
	y, _ := m.AddBinary("y")

	var inner Expr
	inner.Add(2, x)
	inner.Add(3, y)

	var outer Expr
	outer.Add(1, x)
	outer.AddExpr(-1, inner)

	want := []struct {
		coef float64
		v    *Var
	}{{1, x}, {-2, x}, {-3, y}}

	if len(outer.Terms) != len(want) {
		t.Fatalf("项数 = %d, want %d", len(outer.Terms), len(want))
	}
	for i, w := range want {
		if outer.Terms[i].Coef != w.coef || outer.Terms[i].Var != w.v {
			t.Errorf("位置 %d: got (%v, %s), want (%v, %s)",
				i, outer.Terms[i].Coef, outer.Terms[i].Var.Name, w.coef, w.v.Name)
		}
	}
}

func TestSenseString(t *testing.T) {
	cases := []struct {
		sense Sense
		want  string
	}{
		{LessEq, "<="},
		{GreaterEq, ">="},
		{Equal, "="},
	}
	for _, tc := range cases {
		if got := tc.sense.String(); got != tc.want {
			t.Errorf("Sense(%d).String() = %s, want %s", tc.sense, got, tc.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"已合法", "x_1", "x_1"},
		{"空格替换", "Anna Müller", "Anna_M_ller"},
		{"日期连字符", "2025-03-03", "2025_03_03"},
		{"空串", "", "_"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeName(tc.in); got != tc.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
