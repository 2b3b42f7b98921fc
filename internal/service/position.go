package service

// ToPositionNumber 将 (车轴, 轴上位置) 编码为全车唯一的位置编号。
// 车轴和位置都从 1 起，编号 = (axle-1)×perAxle + slot。
func ToPositionNumber(axle, slot, perAxle int) int {
	return (axle-1)*perAxle + slot
}

// FromPositionNumber 将位置编号解码回 (车轴, 轴上位置)
func FromPositionNumber(n, perAxle int) (axle, slot int) {
	axle = (n-1)/perAxle + 1
	slot = (n-1)%perAxle + 1
	return axle, slot
}
