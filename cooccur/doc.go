// Package cooccur 实现基于订单的物品共现（co-occurrence）统计。
//
// 计算被拆成 map / reduce 两步，便于日后分布式执行：
//   - map：MapPairs / MapStripes，对单个订单是纯函数
//   - reduce：Matrix.Merge / Stripes.Merge，满足结合律与交换律
//
// 计数语义：按位置计数，值相同的两个位置不构成物品对。
// 订单中 a 出现 n_a 次、b 出现 n_b 次时，count(a,b) = n_a * n_b，
// pairwise 与 stripes 两种策略在该语义下结果完全一致。
// SelfPairsKeep 保留原始的按位置输出（含 (x,x)），仅 pairwise 策略支持。
package cooccur
