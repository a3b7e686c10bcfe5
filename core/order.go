package core

// Order 是一次购买事件：订单号 + 物品列表。
// Items 允许重复，顺序与语义无关；读入后不再修改。
type Order struct {
	ID    string
	Items []string
}

// PairKey 是有序物品对 (A, B)。
// (a,b) 与 (b,a) 是两个独立的 key：矩阵按两个方向冗余存储，
// 单物品查询只需一次顺序扫描，不需要做 key 规范化。
type PairKey struct {
	A string
	B string
}

// Reverse 返回反方向的 key。
func (k PairKey) Reverse() PairKey {
	return PairKey{A: k.B, B: k.A}
}

// IsSelf 判断是否为自配对（A == B）。
func (k PairKey) IsSelf() bool {
	return k.A == k.B
}

// Observation 是 map 阶段的一条输出：(PairKey, Count)。
type Observation struct {
	Key   PairKey
	Count int64
}

// PairCount 是持久化的一条记录，字段与 Observation 相同，语义上是聚合后的总数。
type PairCount = Observation
