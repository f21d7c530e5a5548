package tree

import "testing"

func TestSegmentTreeRebuildAndQuery(t *testing.T) {
	st, err := NewSegmentTree(5)
	if err != nil {
		t.Fatalf("创建线段树失败: %v", err)
	}

	weights := []float64{1, 2, 3, 4, 5}
	if err := st.Rebuild(weights); err != nil {
		t.Fatalf("重建失败: %v", err)
	}
	if got := st.TotalSum(); got != 15 {
		t.Fatalf("总权重期望15，得到 %f", got)
	}
	for i, w := range weights {
		got, err := st.Query(i)
		if err != nil {
			t.Fatalf("查询索引 %d 失败: %v", i, err)
		}
		if got != w {
			t.Fatalf("索引 %d 期望 %f，得到 %f", i, w, got)
		}
	}
}

func TestSegmentTreeUpdatePropagates(t *testing.T) {
	st, err := NewSegmentTree(4)
	if err != nil {
		t.Fatalf("创建线段树失败: %v", err)
	}
	if err := st.Rebuild([]float64{1, 1, 1, 1}); err != nil {
		t.Fatalf("重建失败: %v", err)
	}

	if err := st.Update(2, 10); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if got := st.TotalSum(); got != 13 {
		t.Fatalf("更新后总权重期望13，得到 %f", got)
	}

	if err := st.Update(4, 1); err == nil {
		t.Fatal("越界更新应报错")
	}
}

func TestSegmentTreeFind(t *testing.T) {
	st, err := NewSegmentTree(3)
	if err != nil {
		t.Fatalf("创建线段树失败: %v", err)
	}
	if err := st.Rebuild([]float64{2, 0, 3}); err != nil {
		t.Fatalf("重建失败: %v", err)
	}

	cases := []struct {
		value float64
		want  int
	}{
		{0, 0},
		{1.5, 0},
		{2, 0},
		{2.1, 2}, // 中间的零权重叶子应被跳过
		{5, 2},
	}
	for _, c := range cases {
		got, err := st.Find(c.value)
		if err != nil {
			t.Fatalf("查找 %f 失败: %v", c.value, err)
		}
		if got != c.want {
			t.Fatalf("查找 %f 期望索引 %d，得到 %d", c.value, c.want, got)
		}
	}

	if _, err := st.Find(100); err == nil {
		t.Fatal("超出总权重的查找应报错")
	}
}
