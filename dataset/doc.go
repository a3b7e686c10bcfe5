// Package dataset 负责订单、商品目录与共现结果三类表格文件的编解码，
// 以及通过 core.Store 的读写。
//
// 单条记录解码失败属于数据质量问题：记录 warn 日志、计入指标后跳过，
// 不会中断整体流程；存储读写失败则原样向上传播。
package dataset
