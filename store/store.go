// Package store 提供 core.Store 的各种后端实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	s, err := store.Open(ctx, store.Config{Backend: "file", Path: "/data"})
//	if err != nil { ... }
//	defer s.Close()
package store
